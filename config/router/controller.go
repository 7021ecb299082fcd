package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/akeren/logfox/pkg/ratelimit"
)

func normalizePath(controller *RESTController, relativePath string) string {
	var path string = controller.mountPoint

	if relativePath != "" {
		path = path + "/" + relativePath
	}

	if path[0] != '/' {
		path = "/" + path
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	return strings.ReplaceAll(path, "//", "/")
}

func (routerService *RouterService) keyForPathAndMethod(path, method string) string {
	return fmt.Sprintf("%s-%s", method, path)
}

func (controller *RESTController) bindHandlerToController(routerService *RouterService, path, method string) {
	key := routerService.keyForPathAndMethod(path, method)
	otherController, foundPrevious := routerService.handlerToControllerMap[key]

	if foundPrevious {
		panic(fmt.Sprintf("A handler is already registered for path '%s' by a different controller '%s'", path, otherController.name))
	}

	routerService.handlerToControllerMap[key] = controller
}

func (routerService *RouterService) bindOverrideRateLimiter(path string, limiter ratelimit.RateLimiter) {
	if limiter == nil {
		return
	}

	_, foundPrevious := routerService.rateLimitOverrides[path]
	if foundPrevious {
		panic(fmt.Sprintf("A rate limiter is already registered for path '%s'", path))
	}

	routerService.rateLimitOverrides[path] = limiter
}

func (routerService *RouterService) bindHandlerRateLimiter(path, method string, limiter ratelimit.RateLimiter) {
	key := routerService.keyForPathAndMethod(path, method)
	routerService.bindOverrideRateLimiter(key, limiter)
}

func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)

		if result == nil {
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("A handler returned an undefined result. This typically indicates a bug in a handler's implementation.").ToJSON())
			return
		}

		c.JSON(result.StatusCode, result.ToJSON())
	}
}

func createPageHandler(routerService *RouterService, page PageFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := page(c)

		if result == nil || result.Node == nil {
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("A page handler returned an undefined result. This typically indicates a bug in a handler's implementation.").ToJSON())
			return
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Header("Cache-Control", "no-store")
		c.Status(result.StatusCode)

		if err := result.Node.Render(c.Writer); err != nil {
			routerService.GetLogger(c).Error("Failed to render page", "path", c.FullPath(), "error", err)
		}
	}
}

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	mountPoint = strings.ReplaceAll("/"+mountPoint, "//", "/")

	return &RESTController{
		name:       name,
		mountPoint: mountPoint,
		version:    "",
		prepare:    prepare,
	}
}

func NewVersionedRESTController(name, version, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	// Prefixing the version to the mount point at controller creation clarifies routing and leaves no room for ambiguity.
	finalPath := strings.ReplaceAll("/"+version+"/"+mountPoint, "//", "/")

	return &RESTController{
		name:       name,
		mountPoint: finalPath,
		version:    version,
		prepare:    prepare,
	}
}

func (controller *RESTController) RateLimitWith(routerService *RouterService, limiter ratelimit.RateLimiter) *RESTController {
	routerService.bindOverrideRateLimiter(controller.mountPoint, limiter)
	return controller
}

func (routerService *RouterService) addRoute(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	method, path string,
	handlers ...MiddlewareFunc,
) string {
	controller.handlerCount++
	mountPoint := normalizePath(controller, path)
	controller.bindHandlerToController(routerService, mountPoint, method)
	routerService.bindHandlerRateLimiter(mountPoint, method, limiter)
	routerService.engine.Handle(method, mountPoint, handlers...)
	routerService.logger.Debug("Handler registered", "method", method, "path", mountPoint)
	return mountPoint
}

func (routerService *RouterService) AddPostHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addRoute(controller, limiter, http.MethodPost, path, append(middlewares, createHandler(handler))...)
}

func (routerService *RouterService) AddGetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addRoute(controller, limiter, http.MethodGet, path, append(middlewares, createHandler(handler))...)
}

func (routerService *RouterService) AddPatchHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addRoute(controller, limiter, http.MethodPatch, path, append(middlewares, createHandler(handler))...)
}

// AddPageHandler registers a GET route that answers with rendered HTML.
func (routerService *RouterService) AddPageHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	page PageFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addRoute(controller, limiter, http.MethodGet, path, append(middlewares, createPageHandler(routerService, page))...)
}

// AddAssetHandler serves files from fsys under path/*filepath for GET and HEAD.
// Directory listings are never served.
func (routerService *RouterService) AddAssetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	fsys http.FileSystem,
) {
	prefix := normalizePath(controller, path)
	fileServer := http.StripPrefix(prefix, http.FileServer(fsys))

	serve := func(c *RequestContext) {
		file := c.Param("filepath")
		if file == "" || strings.HasSuffix(file, "/") {
			c.JSON(http.StatusNotFound, NotFoundResult("Asset not found").ToJSON())
			return
		}

		c.Header("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(c.Writer, c.Request)
	}

	routePath := strings.TrimSuffix(path, "/") + "/*filepath"
	routerService.addRoute(controller, limiter, http.MethodGet, routePath, serve)
	routerService.addRoute(controller, limiter, http.MethodHead, routePath, serve)
}
