package main

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"

	"nhgate/internal/repository/api/nicehash"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type options struct {
	base   string
	org    string
	key    string
	secret string
	method string
	path   string
	params string
	body   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("nicehash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.base, "b", nicehash.DefaultHost, "Api base url")
	fs.StringVar(&o.org, "o", "", "Organization id")
	fs.StringVar(&o.key, "k", "", "Api key")
	fs.StringVar(&o.secret, "s", "", "Secret for api key")
	fs.StringVar(&o.method, "m", http.MethodGet, "Method for request")
	fs.StringVar(&o.path, "p", "/", "Path for request")
	fs.StringVar(&o.params, "q", "", "Parameters for request")
	fs.StringVar(&o.body, "d", "", "Body for request")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func (o options) request() (nicehash.Request, error) {
	req := nicehash.Request{
		Method: strings.ToUpper(o.method),
		Path:   o.path,
		Query:  o.params,
	}
	if o.body != "" {
		if !json.Valid([]byte(o.body)) {
			return req, &nicehash.ParamsError{Path: o.path, Err: errors.New("body is not valid JSON")}
		}
		req.Body = nicehash.RawMessage(o.body)
	}
	return req, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 1
	}

	req, err := o.request()
	if err != nil {
		fmt.Fprintln(stderr, aurora.Red("Unexpected error:"), err)
		return 1
	}

	creds := nicehash.Credentials{Key: o.key, Secret: o.secret, OrganizationID: o.org}
	client, err := nicehash.NewPrivate(o.base, creds)
	if err != nil {
		fmt.Fprintln(stderr, aurora.Red("Unexpected error:"), err)
		return 1
	}

	var out nicehash.RawMessage
	if err := client.Do(ctx, req, &out); err != nil {
		fmt.Fprintln(stderr, aurora.Red("Unexpected error:"), err)
		return 1
	}

	var pretty bytes.Buffer
	if err := stdjson.Indent(&pretty, out, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(out)
	}
	fmt.Fprintln(stdout, aurora.Bold(aurora.Cyan(req.Method+" "+req.URL(o.base))))
	fmt.Fprintln(stdout, aurora.Green(pretty.String()))
	return 0
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
