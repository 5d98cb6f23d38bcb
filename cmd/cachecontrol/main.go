package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	policystore "github.com/always-cache/cachecontrol/pkg/policy-store"
	transformer "github.com/always-cache/cachecontrol/pkg/response-transformer"
	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// listFlag collects a flag given more than once.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ", ") }

func (l *listFlag) Set(value string) error {
	*l = append(*l, value)
	return nil
}

var (
	// CLI flags
	requestFlag        string
	responseFlag       string
	setFlags           listFlag
	deleteFlags        listFlag
	rulesFilenameFlag  string
	pathFlag           string
	methodFlag         string
	dbFilenameFlag     string
	saveFlag           string
	purgeFlag          string
	listFlagSet        bool
	verbosityTraceFlag bool

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&requestFlag, "request", "", "Request Cache-Control header to inspect")
	flag.StringVar(&responseFlag, "response", "", "Response Cache-Control header to start from")
	flag.Var(&setFlags, "set", "Set a response directive, as name=value or name (repeatable)")
	flag.Var(&deleteFlags, "delete", "Delete a response directive (repeatable)")
	flag.StringVar(&rulesFilenameFlag, "rules", "", "Rules file to apply to the response")
	flag.StringVar(&pathFlag, "path", "/", "Request path used to match rules and policies")
	flag.StringVar(&methodFlag, "method", http.MethodGet, "Request method used to match rules and policies")
	flag.StringVar(&dbFilenameFlag, "db", "", "Policy DB file name (use 'memory' for in-memory db)")
	flag.StringVar(&saveFlag, "save", "", "Store the resulting response header as the policy for this prefix")
	flag.StringVar(&purgeFlag, "purge", "", "Remove the stored policy for this prefix")
	flag.BoolVar(&listFlagSet, "list", false, "List stored policies")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.InfoLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}
	log.Logger = log.Level(logLevel).Output(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Str("version", version).Logger()

	var store policystore.PolicyProvider
	if dbFilenameFlag != "" {
		dbFilename := dbFilenameFlag
		if dbFilename == "memory" {
			dbFilename = ""
		}
		sqliteStore, err := policystore.NewSQLiteStore(dbFilename)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open policy store")
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	if err := run(os.Stdout, store); err != nil {
		log.Error().Err(err).Msg("Failed")
		os.Exit(1)
	}
}

func run(out io.Writer, store policystore.PolicyProvider) error {
	if (listFlagSet || saveFlag != "" || purgeFlag != "") && store == nil {
		return errors.New("-list, -save and -purge need -db")
	}

	if purgeFlag != "" {
		if err := store.Purge(purgeFlag); err != nil {
			return err
		}
		log.Info().Str("prefix", purgeFlag).Msg("Policy removed")
	}

	if requestFlag != "" {
		describeRequest(out, rfc9111.ParseRequest([]string{requestFlag}))
	}

	if responseFlag != "" || len(setFlags) > 0 || len(deleteFlags) > 0 || rulesFilenameFlag != "" || store != nil {
		var rules transformer.Rules
		if rulesFilenameFlag != "" {
			fileRules, err := transformer.LoadRules(rulesFilenameFlag)
			if err != nil {
				return err
			}
			rules = append(rules, fileRules...)
		}
		if store != nil {
			policies, err := store.All()
			if err != nil {
				return err
			}
			rules = append(rules, transformer.RulesFromPolicies(policies)...)
		}
		directives, err := buildResponse(responseFlag, rules, methodFlag, pathFlag, setFlags, deleteFlags)
		if err != nil {
			return err
		}
		describeResponse(out, directives)

		if saveFlag != "" {
			policy, err := store.Put(saveFlag, directives.ToHeader())
			if err != nil {
				return err
			}
			log.Info().Str("prefix", policy.Prefix).Str("cacheControl", policy.CacheControl).Msg("Policy saved")
		}
	}

	if listFlagSet {
		policies, err := store.All()
		if err != nil {
			return err
		}
		for _, policy := range policies {
			fmt.Fprintf(out, "%s\t%s\n", policy.Prefix, policy.CacheControl)
		}
	}
	return nil
}

// buildResponse applies the matching rule and then the individual changes
// to the response directives in header.
func buildResponse(header string, rules transformer.Rules, method, path string, set, del []string) (*rfc9111.ResponseDirectives, error) {
	req, err := http.NewRequest(method, path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid path %s", path)
	}
	res := &http.Response{StatusCode: http.StatusOK, Header: make(http.Header), Request: req}
	if header != "" {
		res.Header.Set("Cache-Control", header)
	}
	if err := rules.Apply(res); err != nil {
		return nil, err
	}

	directives := rfc9111.ParseResponse(res.Header.Values("Cache-Control"), nil)
	for _, s := range set {
		var value interface{} = true
		name, arg, found := strings.Cut(s, "=")
		if found {
			value = arg
		}
		if err := directives.Set(name, value); err != nil {
			return nil, err
		}
	}
	for _, name := range del {
		if err := directives.Delete(name); err != nil {
			return nil, err
		}
	}
	return directives, nil
}

func describeRequest(out io.Writer, d *rfc9111.RequestDirectives) {
	fmt.Fprintf(out, "Request: %s\n", d.ToHeader())
	describeDirectives(out, d)
	if maxStale, ok := d.MaxStale(); ok {
		fmt.Fprintf(out, "  max stale: %s\n", maxStale)
	}
	if minFresh, ok := d.MinFresh(); ok {
		fmt.Fprintf(out, "  min fresh: %s\n", minFresh)
	}
}

func describeResponse(out io.Writer, d *rfc9111.ResponseDirectives) {
	fmt.Fprintf(out, "Response: %s\n", d.ToHeader())
	describeDirectives(out, d)
	if age, ok := d.SMaxAge(); ok {
		fmt.Fprintf(out, "  shared max age: %s\n", age)
	}
	if fields, ok := d.Private(); ok {
		fmt.Fprintf(out, "  private: %q\n", fields)
	}
}

func describeDirectives(out io.Writer, d rfc9111.DirectiveSet) {
	d.Each(func(name string, value rfc9111.Value) bool {
		if value.IsFlag() {
			fmt.Fprintf(out, "  %s\n", name)
		} else {
			fmt.Fprintf(out, "  %s = %s (%s)\n", name, value, value.Kind())
		}
		return true
	})
	if age, ok := d.MaxAge(); ok {
		fmt.Fprintf(out, "  max age: %s\n", age)
	}
}
