package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/straye-as/earsip/internal/domain"
)

// letterOps is what the letter commands need from a letter façade
type letterOps[T any] interface {
	List(ctx context.Context, filter domain.LetterFilter) (*domain.Page[T], error)
	Get(ctx context.Context, id int64) (*T, error)
	Delete(ctx context.Context, id int64) error
}

func newIncomingCmd(c *cli) *cobra.Command {
	return newLetterCmd(c, "masuk", "Manage incoming letters (surat masuk)",
		func() letterOps[domain.IncomingLetter] { return c.svc.Incoming },
		[]string{"ID", "NOMOR", "TANGGAL", "PENGIRIM", "PERIHAL", "KATEGORI"},
		func(l domain.IncomingLetter) []string {
			return []string{strconv.FormatInt(l.ID, 10), l.LetterNumber, l.LetterDate, l.Sender, l.Subject, categoryName(l.Category)}
		},
	)
}

func newOutgoingCmd(c *cli) *cobra.Command {
	return newLetterCmd(c, "keluar", "Manage outgoing letters (surat keluar)",
		func() letterOps[domain.OutgoingLetter] { return c.svc.Outgoing },
		[]string{"ID", "NOMOR", "TANGGAL", "TUJUAN", "PERIHAL", "KATEGORI"},
		func(l domain.OutgoingLetter) []string {
			return []string{strconv.FormatInt(l.ID, 10), l.LetterNumber, l.LetterDate, l.Recipient, l.Subject, categoryName(l.Category)}
		},
	)
}

func newLetterCmd[T any](c *cli, use, short string, ops func() letterOps[T], header []string, row func(T) []string) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	var filter domain.LetterFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List letters, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := ops().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			rows := make([][]string, 0, len(page.Data))
			for _, letter := range page.Data {
				rows = append(rows, row(letter))
			}
			if err := writeTable(cmd.OutOrStdout(), header, rows); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pageFooter(page.Meta))
			return nil
		},
	}
	list.Flags().StringVarP(&filter.Q, "query", "q", "", "search letter number and subject")
	list.Flags().Int64Var(&filter.CategoryID, "category", 0, "category id")
	list.Flags().StringVar(&filter.DateFrom, "from", "", "earliest letter date (YYYY-MM-DD)")
	list.Flags().StringVar(&filter.DateTo, "to", "", "latest letter date (YYYY-MM-DD)")
	list.Flags().StringVar(&filter.Sort, "sort", "", "newest, oldest, number_asc or number_desc")
	list.Flags().IntVar(&filter.Page, "page", 1, "page number")
	list.Flags().IntVar(&filter.PerPage, "per-page", 0, "page size")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			letter, err := ops().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), letter)
			}
			return writeTable(cmd.OutOrStdout(), header, [][]string{row(*letter)})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if err := ops().Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s letter %d\n", use, id)
			return nil
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}

func parseIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func categoryName(snapshot *domain.CategorySnapshot) string {
	if snapshot == nil {
		return "-"
	}
	return snapshot.Name
}

func pageFooter(meta domain.PaginationMeta) string {
	if meta.From == nil || meta.To == nil {
		return fmt.Sprintf("0 of %d", meta.Total)
	}
	return fmt.Sprintf("%d-%d of %d (page %d/%d)", *meta.From, *meta.To, meta.Total, meta.CurrentPage, meta.LastPage)
}
