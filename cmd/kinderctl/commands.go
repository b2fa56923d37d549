package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/client"
	"github.com/kinderhub/backend/internal/importer"
	"github.com/kinderhub/backend/internal/listing"
	"github.com/kinderhub/backend/internal/session"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.prompt("Email: ")
			}
			if password == "" {
				password = a.prompt("Password: ")
			}

			resp, err := client.New(a.cfg.Client.APIURL, nil).Login(cmd.Context(), email, password).Unwrap()
			if err != nil {
				return err
			}
			s := session.FromLogin(resp)
			if err := s.Save(a.cfg.Client.SessionFile); err != nil {
				return err
			}
			a.success("Signed in as %s (%s)", s.FullName, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := session.Clear(a.cfg.Client.SessionFile); err != nil {
				return err
			}
			a.success("Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Load(a.cfg.Client.SessionFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n", s.FullName, s.Role)
			if len(s.Students) > 0 {
				fmt.Fprintf(a.out, "Students: %s\n", strings.Join(s.Students, ", "))
			}
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var (
		search   string
		filters  []string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:       "list <module>",
		Short:     "List a collection",
		Args:      cobra.ExactArgs(1),
		ValidArgs: moduleNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.adminClient()
			if err != nil {
				return err
			}
			scr, err := a.openScreen(c, args[0], listing.Options{PageSize: pageSize, Notifier: a.notifier()})
			if err != nil {
				return err
			}
			// A failed load leaves an empty list that still renders.
			loadErr := scr.Load(cmd.Context())
			if err := applyQuery(scr, search, filters); err != nil {
				return err
			}
			if page > 0 {
				scr.Paginate(page-1, 0)
			}
			a.render(scr)
			if loadErr != nil {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "search term")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value, repeatable")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", a.cfg.Client.PageSize, "rows per page")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		search  string
		filters []string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "export <module>",
		Short: "Export the filtered collection to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.adminClient()
			if err != nil {
				return err
			}
			scr, err := a.openScreen(c, args[0], listing.Options{Notifier: a.notifier()})
			if err != nil {
				return err
			}
			if err := scr.Load(cmd.Context()); err != nil {
				return errReported
			}
			if err := applyQuery(scr, search, filters); err != nil {
				return err
			}

			if output == "" {
				output = args[0] + ".xlsx"
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := scr.Export(f); err != nil {
				return err
			}
			a.success("Exported %d rows to %s", scr.FilteredCount(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "search term")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as key=value, repeatable")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <module>.xlsx)")
	return cmd
}

func (a *app) createCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create <module> -f record.json",
		Short: "Create one record from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.writeRecord(cmd.Context(), args[0], nil, file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON record, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <module> <id> -f record.json",
		Short: "Replace one record from a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}
			return a.writeRecord(cmd.Context(), args[0], &id, file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON record, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// writeRecord sends one create or update and shows the re-fetched list.
func (a *app) writeRecord(ctx context.Context, module string, id *uuid.UUID, file string) error {
	c, _, err := a.adminClient()
	if err != nil {
		return err
	}
	scr, err := a.openScreen(c, module, listing.Options{Notifier: a.notifier()})
	if err != nil {
		return err
	}

	var r io.Reader = a.in
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	op, err := recordOp(c, module, id, r)
	if err != nil {
		return err
	}

	what := "create " + normalizeModule(module)
	if id != nil {
		what = "update " + normalizeModule(module)
	}
	if err := scr.Mutate(ctx, what, op); err != nil {
		return errReported
	}
	a.render(scr)
	return nil
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <class|semester|teacher> <file>",
		Short: "Bulk import a spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.adminClient()
			if err != nil {
				return err
			}
			module, path := args[0], args[1]

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			opts := listing.Options{Notifier: a.notifier()}
			name := filepath.Base(path)
			var summary importer.Summary

			switch normalizeModule(module) {
			case "semester":
				err = listing.Semesters(c, opts).Mutate(ctx, "import semesters", func(ctx context.Context) (err error) {
					summary, err = importer.Run(ctx, f, name, importer.SemesterSchema(), c.ImportSemesters)
					return err
				})
			case "teacher":
				err = listing.Teachers(c, opts).Mutate(ctx, "import teachers", func(ctx context.Context) (err error) {
					summary, err = importer.Run(ctx, f, name, importer.TeacherSchema(), c.ImportTeachers)
					return err
				})
			case "class":
				semesters, serr := c.Semesters(ctx).Unwrap()
				if serr != nil {
					return serr
				}
				teachers, terr := c.Teachers(ctx).Unwrap()
				if terr != nil {
					return terr
				}
				schema := importer.ClassSchema(semesters, teachers)
				err = listing.Classes(c, opts).Mutate(ctx, "import classes", func(ctx context.Context) (err error) {
					summary, err = importer.Run(ctx, f, name, schema, c.ImportClasses)
					return err
				})
			default:
				return fmt.Errorf("%q cannot be imported; use class, semester or teacher", module)
			}
			if err != nil {
				return errReported
			}

			a.renderSummary(summary)
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <module> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.adminClient()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}

			opts := listing.Options{Notifier: a.notifier()}
			if !yes {
				opts.Confirm = func(label string) bool {
					return a.confirm(fmt.Sprintf("Delete %s?", label))
				}
			}
			scr, err := a.openScreen(c, args[0], opts)
			if err != nil {
				return err
			}
			if err := scr.Load(cmd.Context()); err != nil {
				return errReported
			}

			deleted, err := scr.Delete(cmd.Context(), id)
			if err != nil {
				return errReported
			}
			if !deleted {
				a.warn("Nothing deleted")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) assignTeacherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-teacher <classId> <teacherId|none>",
		Short: "Assign or clear a class teacher",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.adminClient()
			if err != nil {
				return err
			}
			classID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid class id %q", args[0])
			}
			var teacherID *uuid.UUID
			if !strings.EqualFold(args[1], "none") {
				id, err := uuid.Parse(args[1])
				if err != nil {
					return fmt.Errorf("invalid teacher id %q", args[1])
				}
				teacherID = &id
			}

			class, err := c.AssignTeacher(cmd.Context(), classID, teacherID).Unwrap()
			if err != nil {
				return err
			}
			if teacherID == nil {
				a.success("Cleared teacher of %s", class.ClassName)
			} else {
				a.success("Assigned teacher to %s", class.ClassName)
			}
			return nil
		},
	}
}

func (a *app) uploadDocumentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-document <studentId> <file>",
		Short: "Attach a document to a student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.adminClient()
			if err != nil {
				return err
			}
			studentID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := c.UploadDocument(cmd.Context(), studentID, filepath.Base(args[1]), f).Unwrap()
			if err != nil {
				return err
			}
			a.success("Uploaded %s (%d bytes)", doc.FileName, doc.Size)
			if doc.URL != "" {
				fmt.Fprintln(a.out, doc.URL)
			}
			return nil
		},
	}
}

func (a *app) newsChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "news-chat <message>",
		Short: "Ask the news assistant for a draft",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.adminClient()
			if err != nil {
				return err
			}
			resp, err := c.NewsChat(cmd.Context(), strings.Join(args, " "), nil).Unwrap()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.Reply)
			return nil
		},
	}
}

func applyQuery(scr screen, search string, filters []string) error {
	scr.Search(search)
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("filter %q must look like key=value", f)
		}
		if err := scr.Filter(strings.TrimSpace(key), value); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) render(scr screen) {
	table := tablewriter.NewWriter(a.out)
	table.SetHeader(scr.Header())
	table.SetAutoWrapText(false)
	for _, row := range scr.VisibleRows() {
		table.Append(row)
	}
	table.Render()

	color.New(color.FgCyan).Fprintf(a.out, "Page %d of %d, %d records\n", scr.Page()+1, max(scr.PageCount(), 1), scr.FilteredCount())
}

func (a *app) renderSummary(s importer.Summary) {
	a.success("Imported: %d", s.Imported)
	if s.Failed == 0 {
		return
	}
	color.New(color.FgRed).Fprintf(a.out, "Failed: %d\n", s.Failed)

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"Row", "Reason"})
	for _, e := range s.Errors {
		table.Append([]string{fmt.Sprint(e.Row), e.Reason})
	}
	table.Render()
}
