package router

import (
	"net"
	"net/http"
	"time"

	"github.com/gobwas/ws"
	"github.com/julienschmidt/httprouter"
	"github.com/mailru/easygo/netpoll"
	"go.uber.org/zap"
)

/*
serveWebsocket. upgrades GET /ws and registers the connection in the hub.
the connection file descriptor goes into the epoll interest list (netpoll), so no goroutine
is parked per idle connection: a goroutine from the worker pool is taken only when a
request frame is readable. hang up on the descriptor cancels the user's running partition.
ref: https://sergey.kamardin.org/articles/million-websocket-and-go/
*/
func (api *API) serveWebsocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, _, hs, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("remote", r.RemoteAddr))
		return
	}
	// hijacked connections keep the deadlines of the http server
	conn.SetDeadline(time.Time{})

	api.log.Info("established websocket connection", zap.String("connection name", nameConn(conn)),
		zap.String("protocol", hs.Protocol))

	user := api.hub.Register(api.ctx, conn)
	api.log.Debug("websocket users", zap.Int("connected", api.hub.Len()))

	desc, err := netpoll.HandleRead(conn)
	if err != nil {
		api.log.Error("register websocket connection in poller", zap.Error(err))
		api.hub.Remove(user)
		return
	}

	stop := func() {
		api.poller.Stop(desc)
		desc.Close()
		api.hub.Remove(user)
	}

	err = api.poller.Start(desc, func(ev netpoll.Event) {
		if ev&(netpoll.EventReadHup|netpoll.EventHup) != 0 {
			api.log.Info("user disconnected from websocket server", zap.String("connection name", nameConn(conn)))
			stop()
			return
		}
		if api.closed.Load() {
			return
		}

		api.workers.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					api.log.Error("panic while streaming partition", zap.Any("panic", r),
						zap.String("connection name", nameConn(conn)))
					stop()
				}
			}()
			if err := user.StreamPartition(); err != nil {
				api.log.Info("websocket stream ended", zap.Error(err))
				stop()
			}
		})
	})
	if err != nil {
		api.log.Error("start polling websocket connection", zap.Error(err))
		desc.Close()
		api.hub.Remove(user)
	}
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
