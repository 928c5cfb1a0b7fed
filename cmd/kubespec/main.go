// kubespec inspects Swagger specification documents and the record types
// generated from them, and can list live objects from an API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	function "github.com/crossplane/function-sdk-go"
	"github.com/crossplane/function-sdk-go/logging"

	"github.com/novelcore/kubeclient/internal/config"
	"github.com/novelcore/kubeclient/pkg/auth"
	"github.com/novelcore/kubeclient/pkg/network"
	"github.com/novelcore/kubeclient/pkg/swagger"
)

// CLI defines the command line flags and arguments
type CLI struct {
	Debug bool `short:"d" help:"Emit debug logs in addition to info logs."`

	Spec       string   `arg:"" type:"existingfile" help:"Path to a Swagger specification document (JSON or YAML)."`
	Definition []string `arg:"" optional:"" help:"Definitions to describe. With none given, list all definition names."`

	ListKind  string `help:"List live objects of this kind from the configured API server."`
	Namespace string `help:"Namespace to list from, for namespaced kinds."`
}

// Run executes the selected behavior
func (c *CLI) Run(log logging.Logger) error {
	spec, err := swagger.FromPath(c.Spec, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush() //nolint:errcheck // stdout

	if len(c.Definition) == 0 && c.ListKind == "" {
		for _, name := range spec.Definitions() {
			fmt.Fprintln(w, name)
		}
		return nil
	}

	for _, name := range c.Definition {
		rt, err := spec.RecordTypeFor(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", rt.Name(), rt.Doc())
		for _, f := range rt.Fields() {
			required := ""
			if f.Required {
				required = "required"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", f.Name, f.Model.Describe(), required)
		}
	}

	if c.ListKind != "" {
		return c.list(log)
	}
	return nil
}

// list runs a live list against the configured API server
func (c *CLI) list(log logging.Logger) error {
	cfg := config.New()

	agent := http.DefaultClient
	if cfg.BearerTokenFile != "" {
		token, err := os.ReadFile(cfg.BearerTokenFile)
		if err != nil {
			return err
		}
		agent, err = auth.BearerAgent(strings.TrimSpace(string(token)))
		if err != nil {
			return err
		}
	}

	nc, err := network.New(cfg.BaseURL, network.WithHTTPClient(agent), network.WithLogger(log))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.APICallTimeout)
	defer cancel()

	collection, err := nc.List(ctx, c.ListKind, c.Namespace)
	if err != nil {
		return err
	}
	for _, obj := range collection.Items() {
		meta := obj.Metadata()
		if meta.Namespace() != "" {
			fmt.Printf("%s/%s\n", meta.Namespace(), meta.Name())
			continue
		}
		fmt.Println(meta.Name())
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Description("Inspect Swagger specifications and the record types generated from them."),
		kong.UsageOnError(),
	)
	log, err := function.NewLogger(cli.Debug)
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(cli.Run(log))
}
