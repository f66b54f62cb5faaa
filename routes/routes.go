// Package routes cung cấp tất cả routing functions cho Job Geocoder Service
//
// Cấu trúc:
// - api.go: API routes (/v1/*) và health routes
// - web.go: Web routes (/, /docs)
// - middleware.go: recovery, request ID, zap logger, CORS
//
// Sử dụng:
// routes.SetupAllRoutes(router, routes.Controllers{...}, logger)
package routes
