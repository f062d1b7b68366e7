package mockprovider

import (
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	cors "github.com/itsjamie/gin-cors"
	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/lagrangedao/go-compute-client/wallet"
)

const (
	RouteNonce       = "/api/services/nonce"
	RouteCompute     = "/api/services/compute"
	RouteFreeCompute = "/api/services/freeCompute"
)

// Server simulates a compute provider: it serves the endpoint descriptor,
// tracks nonces per address and checks request signatures the way a real
// provider does.
type Server struct {
	providerAddress string
	disabled        map[string]bool
	pprof           bool

	lk     sync.Mutex
	nonces map[string]int64
	jobs   map[string]*models.ComputeJob
	order  []string
}

type Option func(*Server)

// WithoutEndpoint drops an endpoint name from the advertised descriptor.
func WithoutEndpoint(name string) Option {
	return func(obj *Server) {
		obj.disabled[name] = true
	}
}

func WithProviderAddress(addr string) Option {
	return func(obj *Server) {
		obj.providerAddress = addr
	}
}

func WithPprof() Option {
	return func(obj *Server) {
		obj.pprof = true
	}
}

func New(options ...Option) *Server {
	s := &Server{
		providerAddress: common.Address{}.Hex(),
		disabled:        make(map[string]bool),
		nonces:          make(map[string]int64),
		jobs:            make(map[string]*models.ComputeJob),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Middleware(cors.Config{
		Origins:         "*",
		Methods:         "GET, PUT, POST, DELETE",
		RequestHeaders:  "Origin, Authorization, Content-Type",
		ExposedHeaders:  "",
		MaxAge:          50 * time.Second,
		ValidateHeaders: false,
	}))
	if s.pprof {
		pprof.Register(r)
	}

	r.GET("/", s.getEndpoints)
	r.GET(RouteNonce, s.getNonce)
	r.POST(RouteCompute, s.startCompute(false))
	r.POST(RouteFreeCompute, s.startCompute(true))
	r.GET(RouteCompute, s.computeStatus)
	r.PUT(RouteCompute, s.stopCompute)
	return r
}

// Nonce returns the last accepted nonce of addr.
func (s *Server) Nonce(addr string) int64 {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.nonces[normalize(addr)]
}

func (s *Server) descriptor() models.ProviderEndpoints {
	all := map[string][]string{
		constants.EndpointNonce:         {"GET", RouteNonce},
		constants.EndpointComputeStart:  {"POST", RouteCompute},
		constants.EndpointFreeCompute:   {"POST", RouteFreeCompute},
		constants.EndpointComputeStatus: {"GET", RouteCompute},
		constants.EndpointComputeStop:   {"PUT", RouteCompute},
	}
	for name := range s.disabled {
		delete(all, name)
	}
	return models.ProviderEndpoints{
		ServiceEndpoints: all,
		ProviderAddress:  s.providerAddress,
		Version:          "mock",
		Software:         "compute-cli mock provider",
	}
}

// useNonce accepts nonce for addr when it is above the last one seen.
func (s *Server) useNonce(addr string, nonce int64) bool {
	s.lk.Lock()
	defer s.lk.Unlock()

	addr = normalize(addr)
	if nonce <= s.nonces[addr] {
		return false
	}
	s.nonces[addr] = nonce
	return true
}

// checkSignature verifies a provider request signature over message.
func checkSignature(consumerAddress, signature, message string) bool {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false
	}
	ok, err := wallet.Verify(consumerAddress, sig, crypto.Keccak256([]byte(message)))
	return err == nil && ok
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
