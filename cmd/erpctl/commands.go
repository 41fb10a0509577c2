package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pesio-ai/erp-client/internal/client"
	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/service"
)

// cli carries state shared by every command of one invocation
type cli struct {
	o   overrides
	app *app
}

// run executes one erpctl invocation and releases what it opened
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer func() {
		if c.app != nil {
			c.app.Close()
		}
	}()
	return root.ExecuteContext(ctx)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "erpctl",
		Short:         "Command-line client for the construction ERP backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), c.o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.o.apiURL, "api-url", "", "backend origin (overrides ERP_API_URL)")
	root.PersistentFlags().StringVar(&c.o.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&c.o.store, "session-store", "", "session store location (overrides ERP_SESSION_STORE)")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newProjectsCmd(c),
		newRequisitionsCmd(c),
		newRFQCmd(c),
		newPurchaseOrdersCmd(c),
		newApprovalsCmd(c),
		newJournalsCmd(c),
		newAuditCmd(c),
	)
	return root
}

// printJSON writes v as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addListFlags(cmd *cobra.Command, p *client.ListParams) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.PageSize, "limit", 0, "page size")
	cmd.Flags().StringVar(&p.Search, "search", "", "free-text search")
	cmd.Flags().StringVar(&p.Status, "status", "", "status filter")
	cmd.Flags().StringVar(&p.ProjectID, "project", "", "project filter")
	cmd.Flags().StringVar(&p.From, "from", "", "from date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.To, "to", "", "to date (YYYY-MM-DD)")
}

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			if password == "" {
				password = os.Getenv("ERP_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = line
			}

			user, err := a.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return printJSON(cmd, user)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or ERP_PASSWORD, or prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			if !a.holder.IsAuthenticated() {
				return errors.New(errors.ErrCodeUnauthorized, "Not logged in. Run 'erpctl login' first.")
			}
			user, err := a.sessions.Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, user)
		},
	}
}

func newProjectsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "projects", Short: "Engineering projects"}

	var params client.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.app.engineering.ListProjects(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	addListFlags(list, &params)

	get := &cobra.Command{
		Use:   "get <project-id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.app.engineering.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newRequisitionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "mr", Short: "Material requisitions"}

	var params client.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List requisitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.app.purchase.ListRequisitions(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	addListFlags(list, &params)

	get := &cobra.Command{
		Use:   "get <mr-id>",
		Short: "Show a requisition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mr, err := c.app.purchase.GetRequisition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, mr)
		},
	}

	ready := &cobra.Command{
		Use:   "ready <mr-id>",
		Short: "Check whether a requisition can go to RFQ or purchase order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.app.procurement.RequisitionReadiness(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, struct {
				Ready bool `json:"ready"`
				*service.Readiness
			}{r.Ready(), r})
		},
	}

	submit := &cobra.Command{
		Use:   "submit <mr-id>",
		Short: "Submit a draft requisition for approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mr, err := c.app.purchase.SubmitRequisition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, mr)
		},
	}

	cmd.AddCommand(list, get, ready, submit)
	return cmd
}

func newRFQCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "rfq", Short: "Requests for quotation"}

	var in client.RFQInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an RFQ from an approved requisition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rfq, err := c.app.procurement.CreateRFQ(cmd.Context(), &in)
			if err != nil {
				return err
			}
			return printJSON(cmd, rfq)
		},
	}
	create.Flags().StringVar(&in.RequisitionID, "mr", "", "requisition id")
	create.Flags().StringSliceVar(&in.SupplierIDs, "supplier", nil, "supplier id (repeatable)")
	create.Flags().StringVar(&in.DueDate, "due", "", "quotation due date (YYYY-MM-DD)")
	create.Flags().StringVar(&in.Terms, "terms", "", "terms and conditions")
	_ = create.MarkFlagRequired("mr")

	cmd.AddCommand(create)
	return cmd
}

func newPurchaseOrdersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "po", Short: "Purchase orders"}

	var file string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a purchase order from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in client.PurchaseOrderInput
			if err := readJSON(cmd, file, &in); err != nil {
				return err
			}
			po, err := c.app.procurement.CreatePurchaseOrder(cmd.Context(), &in)
			if err != nil {
				return err
			}
			return printJSON(cmd, po)
		},
	}
	create.Flags().StringVarP(&file, "file", "f", "", "purchase order JSON (- for stdin)")
	_ = create.MarkFlagRequired("file")

	var params client.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List purchase orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.app.purchase.ListPurchaseOrders(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	addListFlags(list, &params)

	cmd.AddCommand(create, list)
	return cmd
}

func readJSON(cmd *cobra.Command, file string, out any) error {
	var r io.Reader
	if file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(file)
		if err != nil {
			return errors.InvalidInput("file", err.Error())
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.InvalidInput("file", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func newApprovalsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "approvals", Short: "Approval tasks"}

	var params client.ListParams
	pending := &cobra.Command{
		Use:   "pending",
		Short: "List tasks waiting on you, overdue first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.app.approvals.Pending(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, tasks)
		},
	}
	addListFlags(pending, &params)

	var remarks string
	approve := &cobra.Command{
		Use:   "approve <task-id>",
		Short: "Approve a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.app.approvals.Approve(cmd.Context(), args[0], remarks)
			if err != nil {
				return err
			}
			return printJSON(cmd, task)
		},
	}
	approve.Flags().StringVar(&remarks, "remarks", "", "approval remarks")

	var reason string
	reject := &cobra.Command{
		Use:   "reject <task-id>",
		Short: "Reject a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := c.app.approvals.Reject(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return printJSON(cmd, task)
		},
	}
	reject.Flags().StringVar(&reason, "reason", "", "rejection reason (required)")

	var to, note string
	delegate := &cobra.Command{
		Use:   "delegate <task-id>",
		Short: "Delegate a task to another user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			me, err := a.sessions.Me(cmd.Context())
			if err != nil {
				return err
			}
			task, err := a.approvals.Delegate(cmd.Context(), args[0], me.ID, to, note)
			if err != nil {
				return err
			}
			return printJSON(cmd, task)
		},
	}
	delegate.Flags().StringVar(&to, "to", "", "user id to delegate to")
	delegate.Flags().StringVar(&note, "remarks", "", "delegation remarks")

	cmd.AddCommand(pending, approve, reject, delegate)
	return cmd
}

func newJournalsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "journals", Short: "Accounting journals"}

	var params client.ListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.app.accounts.ListJournals(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	addListFlags(list, &params)

	cmd.AddCommand(list)
	return cmd
}

func newAuditCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Audit trail"}

	var filter client.AuditFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "Query audit logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.app.admin.ListAuditLogs(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	addListFlags(list, &filter.ListParams)
	list.Flags().StringVar(&filter.UserID, "user", "", "user id")
	list.Flags().StringVar(&filter.Action, "action", "", "action (create, update, approve, ...)")
	list.Flags().StringVar(&filter.EntityType, "entity-type", "", "entity type")
	list.Flags().StringVar(&filter.EntityID, "entity-id", "", "entity id")

	cmd.AddCommand(list)
	return cmd
}
