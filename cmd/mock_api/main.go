package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"telegram-files-client/internal/api"
	"telegram-files-client/internal/mockapi"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	addr := os.Getenv("MOCK_API_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	srv := mockapi.New()
	srv.Code = os.Getenv("MOCK_API_CODE")
	srv.Password = os.Getenv("MOCK_API_PASSWORD")
	srv.RequirePassword = srv.Password != ""
	srv.PasswordHint = os.Getenv("MOCK_API_PASSWORD_HINT")
	seed(srv)

	fmt.Printf("Mock API Server listening on %s\n", addr)
	fmt.Println("Available endpoints:")
	fmt.Println("   GET  /auth/status")
	fmt.Println("   POST /auth/setup")
	fmt.Println("   POST /auth/send-code")
	fmt.Println("   POST /auth/verify-code")
	fmt.Println("   POST /auth/verify-password")
	fmt.Println("   GET  /groups")
	fmt.Println("   GET  /groups/{id}")
	fmt.Println("   GET  /files/group/{groupId}")
	fmt.Println("   GET  /files/{id}/stream")
	fmt.Println("   GET  /files/group/{groupId}/file/{id}/stream")
	fmt.Println("   GET  /health")

	log.Fatal(http.ListenAndServe(addr, corsMiddleware(srv.Handler())))
}

func seed(srv *mockapi.Server) {
	name := func(s string) *string { return &s }

	srv.AddGroup(api.Group{ID: api.NewNumericID(-1001234567890), Name: "VRChat Memes", Type: "channel", MemberCount: 1520},
		mockapi.File{
			RemoteFile: api.RemoteFile{ID: api.NewNumericID(101), Name: name("dance.mp4"), Size: 2097152, Duration: 14.2, Width: 1280, Height: 720, Mime: "video/mp4"},
			Content:    make([]byte, 2097152),
		},
		mockapi.File{
			RemoteFile: api.RemoteFile{ID: api.NewNumericID(102), Size: 524288, Duration: 3, Width: 640, Height: 360, Mime: "video/mp4"},
			Content:    make([]byte, 524288),
		},
	)
	srv.AddGroup(api.Group{ID: api.NewID("family"), Name: "Family"})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
