package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/store"
)

const feedWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type feedSnapshot struct {
	Products []model.Product `json:"products"`
	Orders   []model.Order   `json:"orders"`
	Loading  bool            `json:"loading"`
	Online   bool            `json:"online"`
}

// FeedHandler pushes a catalog and order snapshot to staff clients on
// connect and again after every product or order change. Bursts of changes
// are coalesced into one snapshot.
type FeedHandler struct {
	store *store.Store
	log   *slog.Logger
}

func NewFeedHandler(st *store.Store, log *slog.Logger) *FeedHandler {
	return &FeedHandler{store: st, log: log}
}

func (h *FeedHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	changed := make(chan struct{}, 1)
	unsubscribe := h.store.Subscribe(func(e store.Event) {
		if e.Kind != store.EventProducts && e.Kind != store.EventOrders {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.push(conn) {
		return
	}
	for {
		select {
		case <-changed:
			if !h.push(conn) {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *FeedHandler) push(conn *websocket.Conn) bool {
	snap := feedSnapshot{
		Products: h.store.Products(),
		Orders:   h.store.Orders(),
		Loading:  h.store.Loading(),
		Online:   h.store.Online(),
	}
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
	if err := conn.WriteJSON(snap); err != nil {
		h.log.Debug("feed write", "error", err)
		return false
	}
	return true
}
