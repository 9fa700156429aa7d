package api

import (
	"net/http"

	"github.com/banachtech/hedger/metrics"
	"github.com/banachtech/hedger/pricer"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Options configure access to the server.
type Options struct {
	// APIKeyHash is the bcrypt hash of the accepted bearer key. Empty
	// disables authentication.
	APIKeyHash string
	Rate       rate.Limit
	Burst      int
}

// Server serves HTTP requests for the pricing oracle.
type Server struct {
	engine   pricer.Engine
	info     pricer.Info
	keyHash  []byte
	limiters *limiters
	router   *gin.Engine
}

// NewServer creates a new HTTP server and sets up routing.
func NewServer(engine pricer.Engine, info pricer.Info, opts Options) *Server {
	server := &Server{
		engine:   engine,
		info:     info,
		limiters: newLimiters(opts.Rate, opts.Burst),
	}
	if opts.APIKeyHash != "" {
		server.keyHash = []byte(opts.APIKeyHash)
	}

	server.setupRouter()
	return server
}

func (server *Server) setupRouter() {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.Gin())
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1").Use(server.rateLimit, server.authentication)
	v1.GET("/heartbeat", server.heartbeat)
	v1.POST("/price", server.price)
	server.router = router
}

// Handler returns the routed handler, for use in an http.Server.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
