// Command zkauth-demo drives a zkauthd server through register and/or
// login over its HTTP surface, demonstrating the protocol end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/allsmog/zkauth-go/pkg/zkauth"
	"github.com/allsmog/zkauth-go/pkg/zkauth/discretelog"
	"github.com/allsmog/zkauth-go/pkg/zkauth/elliptic"
)

func main() {
	server := flag.String("server", envDefault("ZKAUTH_SERVER", "http://127.0.0.1:8080"), "zkauthd server base URL")
	username := flag.String("username", envDefault("ZKAUTH_USERNAME", ""), "username")
	password := flag.String("password", envDefault("ZKAUTH_PASSWORD", ""), "password")
	register := flag.Bool("register", false, "register the user before logging in")
	login := flag.Bool("login", false, "perform a login")
	flag.Parse()

	if *username == "" {
		color.Red("zkauth-demo: -username (or ZKAUTH_USERNAME) is required")
		os.Exit(1)
	}
	if !*register && !*login {
		color.Red("zkauth-demo: pass -register, -login, or both")
		os.Exit(1)
	}

	client := &demoClient{
		baseURL: *server,
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	if err := client.run(*username, *password, *register, *login); err != nil {
		color.Red("zkauth-demo: %v", err)
		os.Exit(1)
	}

	color.Green("zkauth-demo: completed successfully")
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type demoClient struct {
	baseURL string
	http    *http.Client
}

func (c *demoClient) run(username, password string, register, login bool) error {
	log.Println("Step 1: fetching configuration...")
	prover, err := c.fetchProver()
	if err != nil {
		return fmt.Errorf("fetching configuration: %w", err)
	}
	log.Println("  fetched configuration")

	x := prover.DeriveSecret(password)

	if register {
		log.Println("Step 2: registering...")
		y1, y2, err := prover.PublicCommitments(x)
		if err != nil {
			return fmt.Errorf("computing public commitments: %w", err)
		}
		if err := c.register(username, y1, y2); err != nil {
			return fmt.Errorf("registering: %w", err)
		}
		log.Println("  registered")
	}

	if login {
		log.Println("Step 3: logging in...")
		if err := c.login(prover, username, x); err != nil {
			return fmt.Errorf("logging in: %w", err)
		}
		log.Println("  logged in")
	}

	return nil
}

func (c *demoClient) fetchProver() (zkauth.Prover, error) {
	resp, err := c.http.Get(c.baseURL + "/v1/configuration")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var cfg zkauth.Configuration
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, err
	}

	switch cfg.Flavor {
	case zkauth.FlavorDiscreteLogarithm:
		return discretelog.FromConfiguration(cfg)
	case zkauth.FlavorEllipticCurve:
		return elliptic.FromConfiguration(cfg)
	default:
		return nil, fmt.Errorf("unknown flavor %q", cfg.Flavor)
	}
}

func (c *demoClient) register(username string, y1, y2 zkauth.Element) error {
	body, err := json.Marshal(map[string]string{"user": username, "y1": y1.String(), "y2": y2.String()})
	if err != nil {
		return err
	}

	resp, err := c.http.Post(c.baseURL+"/v1/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *demoClient) login(prover zkauth.Prover, username string, x zkauth.Scalar) error {
	k, err := prover.GenerateScalar()
	if err != nil {
		return err
	}
	r1, r2, err := prover.Ephemeral(k)
	if err != nil {
		return err
	}

	challengeBody, err := json.Marshal(map[string]string{"user": username, "r1": r1.String(), "r2": r2.String()})
	if err != nil {
		return err
	}

	resp, err := c.http.Post(c.baseURL+"/v1/authentication/challenge", "application/json", bytes.NewReader(challengeBody))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d requesting challenge", resp.StatusCode)
	}

	var challenge struct {
		AuthID string `json:"auth_id"`
		C      string `json:"c"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&challenge); err != nil {
		return err
	}

	c2, err := zkauth.ParseScalar(challenge.C)
	if err != nil {
		return err
	}

	s, err := prover.Respond(x, k, c2)
	if err != nil {
		return err
	}

	answerBody, err := json.Marshal(map[string]string{"auth_id": challenge.AuthID, "s": s.String()})
	if err != nil {
		return err
	}

	answerResp, err := c.http.Post(c.baseURL+"/v1/authentication/answer", "application/json", bytes.NewReader(answerBody))
	if err != nil {
		return err
	}
	defer answerResp.Body.Close()
	if answerResp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d verifying", answerResp.StatusCode)
	}

	var verified struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(answerResp.Body).Decode(&verified); err != nil {
		return err
	}
	if verified.SessionID == "" {
		return fmt.Errorf("server returned an empty session id")
	}

	log.Printf("  session: %s", verified.SessionID)
	return nil
}
