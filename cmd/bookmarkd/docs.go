package main

// General API documentation for swaggo. The rendered document lives in the
// docs package and is served with -tags=swagger.
//
// @title           bookmarkd API
// @version         1.0
// @description     Stores bookmarks and routes notifications to messaging backends by category.
//
// @contact.name   bookmarkd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
