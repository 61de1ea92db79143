// Copyright 2026 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gogama/relay"
	"github.com/gogama/relay/request"
)

// A Server exposes a Service over the channel. It implements
// http.Handler and should be mounted at Path:
//
//	mux := http.NewServeMux()
//	mux.Handle(peer.Path, peer.NewServer(executor.New(logger), logger))
//
// Each frame received on a connection is serviced independently, so a
// slow request does not block configuration updates arriving on the
// same connection.
type Server struct {
	service  relay.Service
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer returns a Server forwarding every frame to svc.
func NewServer(svc relay.Service, logger zerolog.Logger) *Server {
	return &Server{
		service: svc,
		logger:  logger,
	}
}

// ServeHTTP upgrades the connection and services frames until the
// client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx := r.Context()
	var writeMu sync.Mutex
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("peer connection ended")
			}
			return
		}
		go s.handle(ctx, conn, &writeMu, &env)
	}
}

func (s *Server) handle(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, env *envelope) {
	reply := &envelope{ID: env.ID, Op: opReply}
	var err error

	switch env.Op {
	case opConfigure:
		if env.Config == nil {
			err = errors.New("malformed configure frame")
			break
		}
		err = s.service.Configure(ctx, decodeConfig(env.Config))
	case opRequest:
		if env.Request == nil {
			err = errors.New("malformed request frame")
			break
		}
		var res *request.Result
		res, err = s.service.Request(ctx, decodeOptions(env.Request))
		if err == nil {
			reply.Result = encodeResult(res)
		}
	case opResolveProxy:
		var proxy string
		proxy, err = s.service.ResolveProxy(ctx, env.URL)
		if err == nil {
			reply.Proxy = &proxy
		}
	default:
		err = errors.New("unknown operation " + env.Op)
	}

	if err != nil {
		reply = &envelope{ID: env.ID, Op: opError, Error: err.Error()}
	}

	writeMu.Lock()
	werr := conn.WriteJSON(reply)
	writeMu.Unlock()
	if werr != nil {
		s.logger.Error().Err(werr).Str("op", env.Op).Msg("failed to write reply frame")
	}
}
