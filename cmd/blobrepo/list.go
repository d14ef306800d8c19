package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carlfranklin/BlobRepositoryDemo/internal/validation"
	"github.com/carlfranklin/BlobRepositoryDemo/query"
)

var (
	listFilters []string
	listOrder   []string
	listOffset  int
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records in the collection",
	Long: "List records, optionally filtered and ordered. Filters apply before\n" +
		"ordering, and offset/limit apply last.",
	Example: `  blobrepo list
  blobrepo list --filter age:gte:40 --order lastName -f json
  blobrepo list --filter active:eq:true --order age:desc --limit 10`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "filter as field:op:value (op: eq, ne, lt, lte, gt, gte, contains); repeatable")
	listCmd.Flags().StringArrayVar(&listOrder, "order", nil, "order as field or field:desc; repeatable, later fields break ties")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "records to skip")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum records to return (0 means all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	opts := query.Options[map[string]any]{}
	for _, raw := range listFilters {
		f, err := parseFilter(raw)
		if err != nil {
			return err
		}
		opts.Filters = append(opts.Filters, f)
	}
	for _, raw := range listOrder {
		clause, err := parseOrder(raw)
		if err != nil {
			return err
		}
		opts.OrderBy = append(opts.OrderBy, clause)
	}
	if listOffset > 0 {
		opts.Offset = &listOffset
	}
	if listLimit > 0 {
		opts.Limit = &listLimit
	}

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	records, err := repo.Get(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to query records: %w", err)
	}
	return renderRecords(cmd.OutOrStdout(), records, formatFlag, cfg.KeyField)
}

// parseFilter turns field:op:value into a structured filter. The value
// is decoded as JSON when possible, so numbers and booleans compare as
// such, and falls back to a plain string.
func parseFilter(raw string) (query.Filter, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return query.Filter{}, fmt.Errorf("invalid filter %q, want field:op:value", raw)
	}

	var value any
	if err := json.Unmarshal([]byte(parts[2]), &value); err != nil {
		value = parts[2]
	}
	if err := validation.ValidateFilterValue(value, parts[0]); err != nil {
		return query.Filter{}, err
	}

	f := query.Filter{Field: parts[0], Op: query.Op(parts[1]), Value: value}
	if err := f.Validate(); err != nil {
		return query.Filter{}, err
	}
	return f, nil
}

// parseOrder turns field or field:desc into an order clause.
func parseOrder(raw string) (query.OrderClause, error) {
	field, dir, hasDir := strings.Cut(raw, ":")
	clause := query.OrderClause{Field: strings.TrimSpace(field)}
	if clause.Field == "" {
		return clause, fmt.Errorf("invalid order %q, want field or field:desc", raw)
	}
	if hasDir {
		switch strings.ToLower(dir) {
		case "desc":
			clause.Descending = true
		case "asc", "":
		default:
			return clause, fmt.Errorf("invalid order direction %q, want asc or desc", dir)
		}
	}
	return clause, nil
}
