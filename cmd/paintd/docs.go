package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           paintd API
// @version         1.0
// @description     HTTP API for painted-to-photorealistic image transformation.
//
// @contact.name   paintd maintainers
// @contact.url    https://github.com/your-org/paintd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
