package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli"
	"golang.org/x/oauth2"

	"git.sr.ht/~pdg/lectern/canvas"
)

const ExecOpenCmd = "xdg-open"

// Canvas developer keys use the out-of-band redirect when there is no web
// app to receive the callback; the code shows up in the browser instead.
const redirectOOB = "urn:ietf:wg:oauth:2.0:oob"

var AuthorizeCmd = cli.Command{
	Name:    "auth",
	Aliases: []string{"authorize"},
	Usage:   "Validates Canvas credentials and saves them for later commands",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "key",
			Usage: "Developer key client id, for the OAuth2 flow",
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "Developer key client secret, for the OAuth2 flow",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Don't persist credentials",
		},
	},
	Action: Authorize,
}

func oauthEndpoint(base string) oauth2.Endpoint {
	base = strings.TrimSuffix(base, "/")
	return oauth2.Endpoint{
		AuthURL:  base + "/login/oauth2/auth",
		TokenURL: base + "/login/oauth2/token",
	}
}

func Authorize(c *cli.Context) error {
	base := stringValue(c, "url")
	token := stringValue(c, "token")
	course := int64Value(c, "course")
	key := c.String("key")
	secret := c.String("secret")
	dryRun := c.Bool("dry-run")

	if base == "" {
		return fmt.Errorf("the canvas instance URL is required, pass --url")
	}
	if course == 0 {
		return fmt.Errorf("the course id is required, pass --course")
	}

	if token == "" && key != "" && secret != "" {
		conf := oauth2.Config{
			ClientID:     key,
			ClientSecret: secret,
			RedirectURL:  redirectOOB,
			Endpoint:     oauthEndpoint(base),
		}
		userAuthURI := conf.AuthCodeURL(AppName)
		if err := exec.Command(ExecOpenCmd, userAuthURI).Run(); err != nil {
			fmt.Printf("Go to this URL in your browser: %s\n", userAuthURI)
		}
		code, err := getAccessToken("Paste authorization code: ")()
		if err != nil {
			return fmt.Errorf("unable to read authorization code: %w", err)
		}
		if code == "" {
			return fmt.Errorf("empty authorization code")
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: 30 * time.Second})
		tok, err := conf.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("unable to exchange authorization code on %s: %w", base, err)
		}
		token = tok.AccessToken
	}
	if token == "" {
		return fmt.Errorf("either an access token or a developer key and secret are required")
	}

	cl, err := canvas.New(canvas.Config{URL: base, Token: token, Course: course})
	if err != nil {
		return err
	}
	self, err := cl.Self(context.Background())
	if err != nil {
		return fmt.Errorf("token check against %s failed: %w", base, err)
	}
	info("Success, authorized as %s (%s)", self.Name, self.LoginID)

	if dryRun {
		return nil
	}
	return saveCredentials(credentials{URL: base, Token: token, Course: course}, credentialsPath(c.GlobalString("path")))
}

type model struct {
	prompt    string
	textInput *textinput.Model
	err       error
}

func initialModel(prompt string) model {
	ti := textinput.New()
	ti.Placeholder = "..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 45
	ti.EchoMode = textinput.EchoPassword

	return model{
		prompt:    prompt,
		textInput: &ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type errMsg error

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
	case errMsg:
		m.err = msg
		return m, nil
	}

	*m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return fmt.Sprintf(
		"%s\n\n%s",
		m.prompt,
		m.textInput.View(),
	) + "\n"
}

func getAccessToken(prompt string) func() (string, error) {
	return func() (string, error) {
		m := initialModel(prompt)
		err := tea.NewProgram(m).Start()
		return strings.TrimSpace(m.textInput.Value()), err
	}
}
