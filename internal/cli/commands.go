package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/teamnames/pkg/lexicon"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

// ErrNotConfirmed is returned when confirm finds no matching reservation.
var ErrNotConfirmed = errors.New("reservation not found, expired or name mismatch")

type filterFlags struct {
	domains []string
	tones   []string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.domains, "domain", nil, "noun categories to draw from")
	cmd.Flags().StringSliceVar(&f.tones, "tone", nil, "adjective categories to draw from")
}

func (f *filterFlags) options() []teamname.ReserveOption {
	return []teamname.ReserveOption{teamname.WithDomains(f.domains...), teamname.WithTones(f.tones...)}
}

func (a *app) reserveCommand() *cobra.Command {
	var (
		count   int
		filters filterFlags
	)
	cmd := &cobra.Command{
		Use:   "reserve EVENT",
		Short: "Reserve one or more unused team names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.ReserveBatch(cmd.Context(), args[0], count, filters.options()...)
			if err != nil {
				return err
			}
			if a.print.isJSON() {
				return a.print.json(res)
			}

			rows := make([][]any, 0, len(res))
			for _, r := range res {
				rows = append(rows, []any{r.Name, r.Token, formatTime(&r.ExpiresAt), r.Remaining, yesNo(r.Fallback)})
			}
			a.print.table([]any{"Name", "Token", "Expires", "Remaining", "Fallback"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of names to reserve, clamped to TEAMNAME_MAX_BATCH")
	filters.bind(cmd)
	return cmd
}

func (a *app) confirmCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "confirm EVENT TOKEN",
		Short: "Confirm a reservation so it never expires",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, ok, err := a.svc.Confirm(cmd.Context(), args[0], args[1], name)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotConfirmed
			}
			if a.print.isJSON() {
				return a.print.json(conf)
			}
			a.print.success("confirmed %s", conf.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "expected team name (compared ignoring case and surrounding spaces)")
	return cmd
}

func (a *app) releaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release EVENT TOKEN",
		Short: "Release a reservation by its token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.svc.Release(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if a.print.isJSON() {
				return a.print.json(map[string]bool{"released": ok})
			}
			if ok {
				a.print.success("released")
			} else {
				a.print.warn("no active reservation for this token")
			}
			return nil
		},
	}
}

func (a *app) releaseNameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release-name EVENT NAME",
		Short: "Release whichever active reservation holds NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.ReleaseByName(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if a.print.isJSON() {
				return a.print.json(map[string]string{"released": args[1]})
			}
			a.print.success("released %s", args[1])
			return nil
		},
	}
}

func (a *app) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history EVENT",
		Short: "List reservations of an event, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.svc.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if a.print.isJSON() {
				return a.print.json(records)
			}

			rows := make([][]any, 0, len(records))
			for _, r := range records {
				rows = append(rows, []any{
					r.Name, string(r.Status()), formatTime(&r.ReservedAt),
					formatTime(r.AssignedAt), formatTime(r.ReleasedAt), yesNo(r.Fallback),
				})
			}
			a.print.table([]any{"Name", "Status", "Reserved", "Assigned", "Released", "Fallback"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of records, 0 for all")
	return cmd
}

func (a *app) inventoryCommand() *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "inventory EVENT",
		Short: "Show how many names are still available for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.svc.Inventory(cmd.Context(), args[0], filters.options()...)
			if err != nil {
				return err
			}
			if a.print.isJSON() {
				return a.print.json(inv)
			}
			a.print.table([]any{"Total", "Reserved", "Available"}, [][]any{{inv.Total, inv.Reserved, inv.Available}})
			return nil
		},
	}
	filters.bind(cmd)
	return cmd
}

func (a *app) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset EVENT",
		Short: "Release every unconfirmed reservation of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.svc.ResetEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.print.isJSON() {
				return a.print.json(map[string]int64{"released": n})
			}
			a.print.success("released %d reservation(s)", n)
			return nil
		},
	}
}

func (a *app) lexiconCommand() *cobra.Command {
	var (
		filters filterFlags
		names   int
	)
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Inspect the loaded lexicon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lex := a.svc.Lexicon()
			inv := lex.Inventory(filters.domains, filters.tones)
			cats := lex.Categories()

			var sample []string
			if names != 0 {
				sel := lex.GetNameSelection(filters.domains, filters.tones)
				sample = sel.Names()
				if names > 0 && len(sample) > names {
					sample = sample[:names]
				}
			}

			if a.print.isJSON() {
				return a.print.json(struct {
					Inventory  lexicon.Inventory  `json:"inventory"`
					Categories lexicon.Categories `json:"categories"`
					Names      []string           `json:"names,omitempty"`
				}{inv, cats, sample})
			}

			a.print.table([]any{"Version", "Adjectives", "Nouns", "Total"},
				[][]any{{inv.Version, inv.Adjectives, inv.Nouns, inv.Total}})
			fmt.Fprintf(a.print.out, "\n%s %s\n", headerStyle.Render("Tones:"), strings.Join(cats.Adjectives, ", "))
			fmt.Fprintf(a.print.out, "%s %s\n", headerStyle.Render("Domains:"), strings.Join(cats.Nouns, ", "))
			if len(sample) > 0 {
				fmt.Fprintln(a.print.out)
				for _, n := range sample {
					fmt.Fprintln(a.print.out, n)
				}
			}
			return nil
		},
	}
	filters.bind(cmd)
	cmd.Flags().IntVar(&names, "names", 0, "print the first N names of the selection, -1 for all")
	return cmd
}

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store schema and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.backend.migrate(cmd.Context()); err != nil {
				return err
			}
			a.print.success("%s store is up to date", a.backend.name)
			return nil
		},
	}
}

func (a *app) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check store connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.backend.health(cmd.Context()); err != nil {
				return err
			}
			a.print.success("%s store is healthy", a.backend.name)
			return nil
		},
	}
}
