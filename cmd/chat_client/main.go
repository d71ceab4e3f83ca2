package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"chat_sync_service/internal/chatsync"
	"chat_sync_service/pkg/logger"
)

// a terminal chat client over the sync core, mostly a debugging aid
func main() {
	memberURL := flag.String("member", "http://localhost:8080", "member service base URL")
	chatURL := flag.String("chat", "http://localhost:8081", "chat service base URL")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	flag.Parse()

	logger.Log = logger.Initialize("chat_client", "./log")

	token, err := login(*memberURL, *email, *password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	userID := memberIDFromToken(token)
	if userID == "" {
		log.Fatal("login returned an unreadable token")
	}

	convStore, msgStore := chatsync.NewRESTStores(*chatURL, token, nil)
	transport := chatsync.NewWSTransport(strings.Replace(*chatURL, "http", "ws", 1)+"/ws", token)

	session := chatsync.NewSession(userID, transport, convStore, msgStore)
	if err := session.Start(context.Background()); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer session.Stop()

	fmt.Println("commands: ls | open <id> | min <id> | max <id> | close <id> | say <text> | quit")
	repl(session)
}

func repl(session *chatsync.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	current := ""
	for scanner.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch cmd {
		case "ls":
			for _, c := range session.Conversations() {
				marker := " "
				if c.Unread > 0 {
					marker = "*"
				}
				fmt.Printf("%s %s  %s\n", marker, c.ID, c.Name)
			}
		case "open":
			session.OpenConversation(arg)
			current = arg
		case "min":
			session.Minimize(arg)
		case "max":
			session.Restore(arg)
		case "close":
			session.CloseConversation(arg)
			if current == arg {
				current = ""
			}
		case "say":
			if current == "" {
				fmt.Println("open a conversation first")
				continue
			}
			session.Send(current, arg, nil)
		case "quit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}

func login(baseURL, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(baseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login status %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// memberIDFromToken reads the member id out of the JWT payload without
// verifying, the server already validated the login
func memberIDFromToken(t string) string {
	parts := strings.Split(t, ".")
	if len(parts) != 3 {
		return ""
	}
	data, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ""
	}
	var claims struct {
		MemberID string `json:"user_id"`
	}
	if err := json.Unmarshal(data, &claims); err != nil {
		return ""
	}
	return claims.MemberID
}
