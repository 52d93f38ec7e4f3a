package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/oauth2"

	"github.com/digitaldrywood/timetracker/internal/sheetsync"
)

// Auth runs the interactive OAuth2 flow for command line tools and keeps
// the resulting token pair in a local file.
type Auth struct {
	config    *oauth2.Config
	tokenPath string
}

func NewAuth(config *oauth2.Config, tokenPath string) (*Auth, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: OAuth client id and secret are required", sheetsync.ErrConfiguration)
	}

	return &Auth{
		config:    config,
		tokenPath: tokenPath,
	}, nil
}

// Credentials returns the stored token pair, running the browser flow if
// there is none yet.
func (a *Auth) Credentials(ctx context.Context) (sheetsync.Credentials, error) {
	tok, err := a.tokenFromFile()
	if err != nil {
		tok, err = a.getTokenFromWeb(ctx)
		if err != nil {
			return sheetsync.Credentials{}, err
		}
		if err := a.saveToken(tok); err != nil {
			return sheetsync.Credentials{}, err
		}
	}

	return credentials(tok), nil
}

// StoredCredentials returns the stored token pair without prompting.
func (a *Auth) StoredCredentials() (sheetsync.Credentials, error) {
	tok, err := a.tokenFromFile()
	if err != nil {
		return sheetsync.Credentials{}, fmt.Errorf("%w: no stored token at %s, run the auth command first", sheetsync.ErrAuthentication, a.tokenPath)
	}

	return credentials(tok), nil
}

func (a *Auth) getTokenFromWeb(ctx context.Context) (*oauth2.Token, error) {
	// Channel to receive the authorization code
	codeChan := make(chan string, 1)

	port := ":8080"
	if u, err := url.Parse(a.config.RedirectURL); err == nil && u.Port() != "" {
		port = ":" + u.Port()
	}

	callback := "/callback"
	if u, err := url.Parse(a.config.RedirectURL); err == nil && u.Path != "" {
		callback = u.Path
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callback, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			fmt.Fprintf(w, "Error: No authorization code received")
			return
		}

		fmt.Fprintf(w, `
			<html>
				<head><title>Authentication Successful</title></head>
				<body>
					<h1>Authentication Successful!</h1>
					<p>You can close this window and return to the terminal.</p>
					<script>window.setTimeout(function(){window.close();}, 2000);</script>
				</body>
			</html>
		`)

		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{Addr: port, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	authURL := a.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Opening browser for authentication...\n")
	fmt.Printf("If browser doesn't open automatically, visit:\n%v\n", authURL)

	openBrowser(authURL)

	fmt.Println("Waiting for authentication...")

	var authCode string
	select {
	case authCode = <-codeChan:
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdown)

	if authCode == "" {
		return nil, fmt.Errorf("%w: authentication cancelled (%v)", sheetsync.ErrAuthentication, ctx.Err())
	}

	tok, err := a.config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to retrieve token from web: %w", sheetsync.ErrAuthentication, err)
	}

	return tok, nil
}

func credentials(tok *oauth2.Token) sheetsync.Credentials {
	return sheetsync.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

func (a *Auth) tokenFromFile() (*oauth2.Token, error) {
	f, err := os.Open(a.tokenPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func (a *Auth) saveToken(token *oauth2.Token) error {
	fmt.Printf("Saving credential file to: %s\n", a.tokenPath)
	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0700); err != nil {
		return fmt.Errorf("unable to create token directory: %v", err)
	}

	f, err := os.OpenFile(a.tokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %v", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// openBrowser tries to open the URL in a browser
func openBrowser(url string) {
	var err error

	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
