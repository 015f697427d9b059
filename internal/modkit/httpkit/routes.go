// Package httpkit holds the routing helpers modules mount their handlers with
package httpkit

import (
	phttp "tasksync/internal/platform/net/http"
)

// Router is the platform router seam
type Router = phttp.Router

// Response is the platform response type
type Response = phttp.Response
