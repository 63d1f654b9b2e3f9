package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"

	"interview-platform/config"
	"interview-platform/internal/apperr"
	"interview-platform/internal/respond"
)

type route struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// Proxy выбирает маршрут по самому длинному совпавшему префиксу.
type Proxy struct {
	routes []route
}

func NewProxy(routes []config.RouteConfig) (*Proxy, error) {
	proxy := &Proxy{}
	for _, routeConfig := range routes {
		target, err := url.Parse(routeConfig.Upstream)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("неверный upstream %q для %q", routeConfig.Upstream, routeConfig.Prefix)
		}

		proxy.routes = append(proxy.routes, route{
			prefix: strings.TrimSuffix(routeConfig.Prefix, "/"),
			proxy:  newReverseProxy(target),
		})
	}

	sort.SliceStable(proxy.routes, func(i, j int) bool {
		return len(proxy.routes[i].prefix) > len(proxy.routes[j].prefix)
	})
	return proxy, nil
}

func newReverseProxy(target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(proxyRequest *httputil.ProxyRequest) {
			proxyRequest.SetURL(target)
			proxyRequest.SetXForwarded()
		},
		ErrorHandler: func(writer http.ResponseWriter, request *http.Request, err error) {
			respond.Error(writer, request, apperr.BadGateway(err))
		},
	}
}

func (proxy *Proxy) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	path := request.URL.Path
	for _, candidate := range proxy.routes {
		if candidate.prefix == "" || path == candidate.prefix || strings.HasPrefix(path, candidate.prefix+"/") {
			candidate.proxy.ServeHTTP(writer, request)
			return
		}
	}

	respond.Error(writer, request, apperr.ResourceNotFound("No route matches the request path"))
}
