package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
)

// listCmd prints the documents in the local store.
type listCmd struct {
	*root
	fs *flag.FlagSet
}

func (l *listCmd) FlagSet() *flag.FlagSet {
	return l.fs
}

func parseListCmd(args []string, r *root) (*listCmd, error) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	cmd := &listCmd{root: r.subcommand("list"), fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (l *listCmd) Run() error {
	docs, err := l.openDocs()
	if err != nil {
		return err
	}
	defer docs.Close()

	ctx := context.Background()
	keys, err := docs.List(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(os.Stdout, "no annotation documents stored")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tARTIFACT\tANNOTATIONS\tUPDATED BY\tUPDATED")
	for _, key := range keys {
		doc, err := docs.Get(ctx, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			key.ProjectID, key.ArtifactID, len(doc.Annotations),
			doc.UpdatedBy, doc.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
