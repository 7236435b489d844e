package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/logship/logsh/internal/adapters/driven/auth"
	"github.com/logship/logsh/internal/core/domain"
	"github.com/logship/logsh/internal/core/ports/driving"
	"github.com/logship/logsh/internal/logger"
)

// newPasswordPrompt builds the interactive password source. Tests replace it.
var newPasswordPrompt = func(prompt string) domain.CredentialSource {
	return auth.NewPromptCredential(prompt)
}

var (
	addUsername   string
	addPassword   string
	addDefault    bool
	addOAuthFlow  string
	loginFlow     string
	loginPassword string
	listOutput    string
)

var connectionCmd = &cobra.Command{
	Use:     "connection",
	Aliases: []string{"c", "conn"},
	Short:   "Configure logsh connections",
}

var connectionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a connection",
}

var connectionAddBasicCmd = &cobra.Command{
	Use:     "basic NAME [SERVER]",
	Aliases: []string{"u", "user"},
	Short:   "Add a username and password connection",
	Long: `Add a connection that exchanges a username and password for a token.

SERVER may be omitted when NAME already exists; the stored server is reused.
The password is prompted for when --password is not given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConnectionAddBasic,
}

var connectionAddOAuthCmd = &cobra.Command{
	Use:   "oauth NAME [SERVER]",
	Short: "Add an OAuth connection",
	Long: `Add a connection that signs in through the server's OAuth provider.

The device flow prints a code to enter in the browser; the code flow opens
the browser and receives the result on a local port.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConnectionAddOAuth,
}

var connectionLoginCmd = &cobra.Command{
	Use:   "login [NAME]",
	Short: "Authenticate an existing connection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConnectionLogin,
}

var connectionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List connections",
	Args:    cobra.NoArgs,
	RunE:    runConnectionList,
}

var connectionRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a connection",
	Args:    cobra.ExactArgs(1),
	RunE:    runConnectionRemove,
}

var connectionDefaultCmd = &cobra.Command{
	Use:     "default NAME",
	Aliases: []string{"d"},
	Short:   "Set the default logsh connection",
	Args:    cobra.ExactArgs(1),
	RunE:    runConnectionDefault,
}

func init() {
	connectionAddBasicCmd.Flags().StringVarP(&addUsername, "username", "u", "", "username")
	connectionAddBasicCmd.Flags().StringVarP(&addPassword, "password", "p", "", "password")
	connectionAddBasicCmd.Flags().BoolVar(&addDefault, "default", true, "set the new connection as default")

	connectionAddOAuthCmd.Flags().BoolVar(&addDefault, "default", true, "set the new connection as default")
	connectionAddOAuthCmd.Flags().StringVar(&addOAuthFlow, "flow", "device", "OAuth flow (device, code)")

	connectionLoginCmd.Flags().StringVar(&loginFlow, "flow", "",
		"OAuth flow (device, code, refresh); defaults to the stored flow")
	connectionLoginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password for basic connections")

	connectionListCmd.Flags().StringVarP(&listOutput, "output", "o", "table",
		"output format (table, markdown, json, json-pretty, csv)")

	connectionAddCmd.AddCommand(connectionAddBasicCmd)
	connectionAddCmd.AddCommand(connectionAddOAuthCmd)

	connectionCmd.AddCommand(connectionAddCmd)
	connectionCmd.AddCommand(connectionLoginCmd)
	connectionCmd.AddCommand(connectionListCmd)
	connectionCmd.AddCommand(connectionRemoveCmd)
	connectionCmd.AddCommand(connectionDefaultCmd)
}

func requireConnectionService() error {
	if connectionService == nil {
		return errors.New("connection service not configured")
	}
	return nil
}

// passwordSource uses the flag value when given and prompts otherwise.
func passwordSource(flag, username string) domain.CredentialSource {
	if flag != "" {
		return auth.StaticCredential(flag)
	}
	return newPasswordPrompt(fmt.Sprintf("Please enter %s's password: ", username))
}

func readUsername(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "Please enter your logship username:")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read username: %w", err)
	}
	username := strings.TrimSpace(line)
	if username == "" {
		return "", errors.New("username is required")
	}
	return username, nil
}

func serverArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

func runConnectionAddBasic(cmd *cobra.Command, args []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}

	username := addUsername
	if username == "" {
		var err error
		username, err = readUsername(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}
	logger.Debug("authenticating with username: %s", username)

	conn, err := connectionService.Add(cmd.Context(), driving.AddConnectionRequest{
		Name:        args[0],
		Server:      serverArg(args),
		Auth:        domain.NewJwtRequest(username, passwordSource(addPassword, username)),
		MakeDefault: addDefault,
	})
	if err != nil {
		return fmt.Errorf("error adding connection: %w", err)
	}

	printConnected(cmd.OutOrStdout(), conn)
	return nil
}

func runConnectionAddOAuth(cmd *cobra.Command, args []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}

	flow, err := domain.ParseOAuthFlow(addOAuthFlow)
	if err != nil {
		return err
	}
	if flow == domain.OAuthFlowRefresh {
		return fmt.Errorf("flow %q cannot be used for a new connection", addOAuthFlow)
	}

	conn, err := connectionService.Add(cmd.Context(), driving.AddConnectionRequest{
		Name:        args[0],
		Server:      serverArg(args),
		Auth:        domain.NewOAuthRequest(flow),
		MakeDefault: addDefault,
	})
	if err != nil {
		return fmt.Errorf("error adding connection: %w", err)
	}

	printConnected(cmd.OutOrStdout(), conn)
	return nil
}

func runConnectionLogin(cmd *cobra.Command, args []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	req := driving.LoginRequest{Name: name}
	if loginFlow != "" {
		flow, err := domain.ParseOAuthFlow(loginFlow)
		if err != nil {
			return err
		}
		req.Flow = flow
	}

	current, err := connectionService.Resolve(cmd.Context(), name)
	if err != nil {
		return err
	}
	if current.Connection.Auth.Kind() == domain.AuthKindJwt {
		req.Password = passwordSource(loginPassword, current.Connection.Username)
	}

	conn, err := connectionService.Login(cmd.Context(), req)
	if err != nil {
		return err
	}

	printConnected(cmd.OutOrStdout(), conn)
	return nil
}

// connectionRecord is the JSON form of a listed connection.
type connectionRecord struct {
	Name      string `json:"name"`
	Server    string `json:"server"`
	IsDefault bool   `json:"is_default"`
	Username  string `json:"username"`
	Auth      string `json:"auth"`
}

func runConnectionList(cmd *cobra.Command, _ []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}
	mode, err := parseOutputMode(listOutput)
	if err != nil {
		return err
	}

	summaries, err := connectionService.List(cmd.Context())
	if err != nil {
		return err
	}

	records := make([]connectionRecord, 0, len(summaries))
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		kind := authLabel(s)
		rows = append(rows, []string{s.Name, s.Server, fmt.Sprint(s.IsDefault), s.Username, kind})
		records = append(records, connectionRecord{
			Name:      s.Name,
			Server:    s.Server,
			IsDefault: s.IsDefault,
			Username:  s.Username,
			Auth:      kind,
		})
	}

	out := listing{
		Headers: []string{"Name", "Server", "Default", "Logged in User", "Auth"},
		Rows:    rows,
		Records: records,
	}
	return out.write(cmd.OutOrStdout(), mode)
}

func authLabel(s driving.ConnectionSummary) string {
	switch s.AuthKind {
	case domain.AuthKindJwt:
		return "basic"
	case domain.AuthKindOAuth:
		return "oauth"
	default:
		return "none"
	}
}

func runConnectionRemove(cmd *cobra.Command, args []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}

	removed, err := connectionService.Remove(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(cmd.OutOrStdout(), "No connection with name %q.\n", args[0])
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed connection %q.\n", args[0])
	return nil
}

func runConnectionDefault(cmd *cobra.Command, args []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}

	if err := connectionService.SetDefault(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Default connection set to %q.\n", args[0])
	return nil
}

func printConnected(w io.Writer, conn *domain.NamedConnection) {
	fmt.Fprintf(w, "Connection %q authenticated as %s.\n", conn.Name, conn.Connection.Username)
}
