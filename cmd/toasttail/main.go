// Command toasttail connects to the server's event stream and prints toast
// and render events as they arrive. Useful when poking the API by hand.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"quantum/internal/notifications"
)

func main() {
	host := flag.String("host", "localhost:8420", "API server host")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws/events"}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				log.Printf("Read error: %v", err)
				return
			}
			var ev notifications.Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				log.Printf("Unparseable event: %s", raw)
				continue
			}
			switch ev.Type {
			case "toast":
				log.Printf("[%s] %s", ev.Severity, ev.Message)
			case "render":
				log.Printf("[render] %s", ev.Region)
			default:
				log.Printf("[%s] %s", ev.Type, raw)
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection...")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
