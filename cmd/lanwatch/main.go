// lanwatch mirrors an admin table in the terminal through the change feed.
//
//	lanwatch -server http://localhost:3000 -token $TOKEN -table registrations
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lanarena/realtime"

	"github.com/gorilla/websocket"
)

type row map[string]any

func rowID(r row) string {
	id, _ := r["id"].(string)
	return id
}

// columns printed per table
var columns = map[string][]string{
	realtime.TableRegistrations: {"team_name", "college", "captain_name", "status"},
	realtime.TableNotifications: {"title", "type", "target_audience", "status"},
}

func main() {
	server := flag.String("server", "http://localhost:3000", "base URL of the server")
	token := flag.String("token", os.Getenv("LANARENA_TOKEN"), "admin session token")
	table := flag.String("table", realtime.TableRegistrations, "registrations or notifications")
	flag.Parse()

	if _, ok := columns[*table]; !ok {
		log.Fatalf("unsupported table %q", *table)
	}
	if *token == "" {
		log.Fatal("an admin token is required (-token or LANARENA_TOKEN)")
	}

	list := realtime.NewList(rowID, 0)
	client := &http.Client{Timeout: 15 * time.Second}

	rows, err := fetch(client, *server, *token, *table)
	if err != nil {
		log.Fatalf("initial fetch: %v", err)
	}
	list.Reset(rows)
	render(os.Stdout, *table, list.Items())

	feedURL, err := socketURL(*server, *table)
	if err != nil {
		log.Fatal(err)
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+*token)
	conn, _, err := websocket.DefaultDialer.Dial(feedURL, header)
	if err != nil {
		log.Fatalf("dial %s: %v", feedURL, err)
	}
	defer conn.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		var ev realtime.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("feed closed: %v", err)
			return
		}
		if err := list.Apply(ev); err != nil {
			log.Printf("skip event: %v", err)
			continue
		}
		fmt.Printf("\n%s %s %s\n", ev.At.Local().Format("15:04:05"), ev.Type, ev.RowID())
		render(os.Stdout, *table, list.Items())
	}
}

// fetch loads the current rows through the admin API.
func fetch(client *http.Client, server, token, table string) ([]row, error) {
	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(server, "/")+"/api/admin/"+table, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	var rows []row
	if raw, ok := payload[table]; ok {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode %s: %w", table, err)
		}
	}
	return rows, nil
}

// socketURL turns the server base URL into the admin feed URL for table.
func socketURL(server, table string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/admin/" + table
	u.RawQuery = ""
	return u.String(), nil
}

func render(w io.Writer, table string, rows []row) {
	cols := columns[table]
	fmt.Fprintf(w, "%s (%d)\n", table, len(rows))
	for _, r := range rows {
		cells := make([]string, 0, len(cols))
		for _, c := range cols {
			cells = append(cells, fmt.Sprint(r[c]))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(cells, " | "))
	}
}
