package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	goNebula "github.com/MrEthical07/goNebula"
	"github.com/MrEthical07/goNebula/route"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session",
		Long: `Sign in with the login type of the selected frontend. The password may
also come from NEBULA_PASSWORD.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("NEBULA_PASSWORD")
			}
			if _, err := a.client.Login(cmd.Context(), goNebula.LoginRequest{Username: username, Password: password}); err != nil {
				return err
			}
			s := a.client.Session(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s [%s]\n", s.Username(), strings.Join(s.Roles(), ","))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			was := a.client.IsAuthenticated(cmd.Context())
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			if was {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			}
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if refresh {
				_ = a.client.RefreshProfile(ctx)
			}
			s := a.client.Session(ctx)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:    %s\n", a.client.State(ctx))
			if !s.IsAuthenticated() {
				return nil
			}
			fmt.Fprintf(out, "user:     %s\n", s.Username())
			fmt.Fprintf(out, "roles:    %s\n", strings.Join(s.Roles(), ","))
			fmt.Fprintf(out, "frontend: %s\n", a.client.Config().Frontend)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-read the profile from the backend first")
	return cmd
}

// splitTarget turns "/path?a=1" into its path and query.
func splitTarget(raw string) (string, url.Values, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", goNebula.ErrInvalidRequest, err)
	}
	return u.Path, u.Query(), nil
}

func writeJSON(w io.Writer, payload []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		_, _ = w.Write(payload)
		fmt.Fprintln(w)
		return
	}
	buf.WriteByte('\n')
	_, _ = buf.WriteTo(w)
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>...",
		Short: "GET one or more endpoints concurrently and print their data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([][]byte, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, raw := range args {
				g.Go(func() error {
					path, query, err := splitTarget(raw)
					if err != nil {
						return err
					}
					payload, err := a.client.Get(ctx, path, query)
					if err != nil {
						return err
					}
					results[i] = payload
					return nil
				})
			}
			err := g.Wait()

			out := cmd.OutOrStdout()
			for i, payload := range results {
				if payload == nil {
					continue
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "# %s\n", args[i])
				}
				writeJSON(out, payload)
			}
			return err
		},
	}
}

func newPostCmd(a *app) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "post <path>",
		Short: "POST a JSON body and print the data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, query, err := splitTarget(args[0])
			if err != nil {
				return err
			}
			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("%w: --data is not valid JSON", goNebula.ErrInvalidRequest)
				}
				body = json.RawMessage(data)
			}
			payload, err := a.client.Execute(cmd.Context(), goNebula.Request{
				Method: http.MethodPost,
				Path:   path,
				Query:  query,
				Body:   body,
			})
			if err != nil {
				return err
			}
			writeJSON(cmd.OutOrStdout(), payload)
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "Fetch a binary export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, query, err := splitTarget(args[0])
			if err != nil {
				return err
			}
			data, err := a.client.Download(cmd.Context(), path, query)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(data), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func newMenuCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the navigation menu visible to the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.Menu(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			printMenu(cmd.OutOrStdout(), items, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the menu as JSON")
	return cmd
}

func printMenu(w io.Writer, items []route.MenuItem, depth int) {
	for _, item := range items {
		fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", depth), item.Title, item.Path)
		printMenu(w, item.Children, depth+1)
	}
}

func newNavigateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <path>...",
		Short: "Walk paths through the route guard and print where each lands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := a.client.NewRouter(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, target := range args {
				if err := router.Push(cmd.Context(), target); err != nil {
					return err
				}
				loc := router.Current()
				fmt.Fprintf(out, "%s -> %s\t%s\n", target, loc.FullPath, loc.Title)
			}
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var req goNebula.RegisterRequest
	cmd := &cobra.Command{
		Use:       "register <merchant|admin|user>",
		Short:     "Create an account",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"merchant", "admin", "user"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				created map[string]any
				err     error
			)
			switch args[0] {
			case "merchant":
				created, err = a.client.RegisterMerchant(cmd.Context(), req)
			case "admin":
				created, err = a.client.RegisterAdmin(cmd.Context(), req)
			case "user":
				created, err = a.client.RegisterUser(cmd.Context(), req)
			default:
				return errors.New("account kind must be merchant, admin or user")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %v as %v\n", created["username"], created["role"])
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Username, "username", "u", "", "account name")
	f.StringVarP(&req.Password, "password", "p", "", "account password")
	f.StringVar(&req.Nickname, "nickname", "", "display name")
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.StringVar(&req.InviteCode, "invite-code", "", "admin invite code")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
