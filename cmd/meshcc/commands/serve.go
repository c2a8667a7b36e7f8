package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/meshcc/meshcc-go/pkg/discovery"
	"github.com/meshcc/meshcc-go/pkg/transport"
)

var (
	serveListen    string
	serveTransport string
	servePath      string
	serveAdvertise bool
	serveHomeID    uint32
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a simulated gateway",
	Long: `Serve answers gateway traffic with the simulated devices of the
configuration, over TCP (length-prefixed envelopes) or WebSocket (one
envelope per binary message). With --advertise the gateway is announced
via mDNS so that discover and homeId-based configs can find it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := simulatedNetwork(cfg)
		if err != nil {
			return err
		}
		gw := newSimGateway(network.Responder(), logger)

		ln, err := net.Listen("tcp", serveListen)
		if err != nil {
			return err
		}
		defer ln.Close()

		ctx := cmd.Context()
		tp := discovery.Transport(serveTransport)
		if !tp.Valid() {
			return fmt.Errorf("%w: %q", discovery.ErrInvalidTransport, serveTransport)
		}

		if serveAdvertise {
			homeID := serveHomeID
			if homeID == 0 {
				homeID = cfg.Gateway.HomeID
			}
			adv, err := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{})
			if err != nil {
				return err
			}
			defer adv.StopAll()

			_, port, _ := net.SplitHostPort(ln.Addr().String())
			p, _ := strconv.Atoi(port)
			err = adv.Advertise(ctx, &discovery.GatewayAdvertisement{
				GatewayInfo: discovery.GatewayInfo{
					HomeID:    homeID,
					Version:   Version,
					Transport: tp,
					Path:      servePath,
				},
				Port: uint16(p),
			})
			if err != nil {
				return err
			}
		}

		logger.Info("simulated gateway listening", "address", ln.Addr(), "transport", tp, "nodes", network.IDs())
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s (%s)\n", ln.Addr(), tp)

		if tp == discovery.TransportWebSocket {
			return gw.serveWebSocket(ctx, ln, servePath)
		}
		return gw.serveStream(ctx, ln)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":"+strconv.Itoa(discovery.DefaultPort), "listen address")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "tcp", "tcp or ws")
	serveCmd.Flags().StringVar(&servePath, "path", "/cc", "WebSocket path")
	serveCmd.Flags().BoolVar(&serveAdvertise, "advertise", false, "announce the gateway via mDNS")
	serveCmd.Flags().Uint32Var(&serveHomeID, "home-id", 0, "home id to advertise")
	rootCmd.AddCommand(serveCmd)
}

// simGateway answers envelopes with a responder.
type simGateway struct {
	respond transport.Responder
	logger  *slog.Logger

	wg sync.WaitGroup
}

func newSimGateway(respond transport.Responder, logger *slog.Logger) *simGateway {
	return &simGateway{respond: respond, logger: logger}
}

// handle parses one inbound message and returns the encoded replies.
func (g *simGateway) handle(msg []byte) [][]byte {
	env, err := transport.ParseEnvelope(msg)
	if err != nil {
		g.debugLog("dropping malformed envelope", "error", err)
		return nil
	}
	replies := g.respond(env)
	out := make([][]byte, len(replies))
	for i, r := range replies {
		out[i] = r.Bytes()
	}
	return out
}

// serveStream accepts TCP clients until ctx is done.
func (g *simGateway) serveStream(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			g.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			g.serveConn(ctx, conn)
		}()
	}
}

func (g *simGateway) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	g.debugLog("client connected", "remote", conn.RemoteAddr())
	reader := transport.NewFrameReader(conn)
	writer := transport.NewFrameWriter(conn)
	for {
		msg, err := reader.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				g.debugLog("client read failed", "remote", conn.RemoteAddr(), "error", err)
			}
			return
		}
		for _, reply := range g.handle(msg) {
			if err := writer.WriteFrame(reply); err != nil {
				g.debugLog("client write failed", "remote", conn.RemoteAddr(), "error", err)
				return
			}
		}
	}
}

// serveWebSocket serves WebSocket clients on path until ctx is done.
func (g *simGateway) serveWebSocket(ctx context.Context, ln net.Listener, path string) error {
	mux := http.NewServeMux()
	mux.HandleFunc(path, g.handleWebSocket)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func (g *simGateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.debugLog("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		for _, reply := range g.handle(msg) {
			if err := conn.WriteMessage(websocket.BinaryMessage, reply); err != nil {
				return
			}
		}
	}
}

func (g *simGateway) debugLog(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
