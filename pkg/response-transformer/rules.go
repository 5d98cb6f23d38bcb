package responsetransformer

import (
	"net/http"
	"os"
	"sort"
	"strings"

	ccheader "github.com/always-cache/cachecontrol/pkg/cache-control-header"
	policystore "github.com/always-cache/cachecontrol/pkg/policy-store"
	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Rules []Rule

// Rule changes the Cache-Control directives of matching responses.
//
// Override replaces all directives, Default is only used when the response
// has none. Set and Delete are applied afterwards, one directive at a time;
// an empty Set value sets the directive without argument.
type Rule struct {
	Prefix   string            `yaml:"prefix"`
	Path     string            `yaml:"path"`
	Method   string            `yaml:"method"`
	Default  string            `yaml:"default"`
	Override string            `yaml:"override"`
	Set      map[string]string `yaml:"set"`
	Delete   []string          `yaml:"delete"`
	Query    map[string]string `yaml:"query"`
	Headers  map[string]string `yaml:"headers"`
}

type config struct {
	Rules Rules `yaml:"rules"`
}

// LoadRules reads rules from a yaml file with a top level "rules" list.
func LoadRules(filename string) (Rules, error) {
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading rules file")
	}
	var c config
	if err := yaml.Unmarshal(configBytes, &c); err != nil {
		return nil, errors.Wrapf(err, "parsing rules file %s", filename)
	}
	if err := c.Rules.Validate(); err != nil {
		return nil, err
	}
	return c.Rules, nil
}

// Validate applies every rule to empty directives, so that invalid
// directive values are found before any response is served.
func (r Rules) Validate() error {
	for i, rule := range r {
		if err := rule.apply(rfc9111.NewResponseDirectives(nil, nil)); err != nil {
			return errors.Wrapf(err, "rule %d", i)
		}
	}
	return nil
}

// RulesFromPolicies returns override rules for stored policies.
// Longer prefixes come first, so that the most specific policy matches.
func RulesFromPolicies(policies []policystore.Policy) Rules {
	rules := make(Rules, 0, len(policies))
	for _, policy := range policies {
		rules = append(rules, Rule{Prefix: policy.Prefix, Override: policy.CacheControl})
	}
	sort.SliceStable(rules, func(i, j int) bool { return len(rules[i].Prefix) > len(rules[j].Prefix) })
	return rules
}

func (r Rules) Apply(res *http.Response) error {
	// only apply rules for successes
	if res.StatusCode != http.StatusOK {
		return nil
	}
	// if rule found, apply to response
	if rule := r.find(res); rule != nil {
		return applyRuleToResponse(*rule, res)
	}
	return nil
}

func applyRuleToResponse(rule Rule, res *http.Response) error {
	if err := rule.apply(ccheader.Bind(res.Header, nil)); err != nil {
		return err
	}
	for name, value := range rule.Headers {
		log.Trace().Msgf("Setting header %s", name)
		res.Header.Set(name, value)
	}
	return nil
}

func (rule Rule) apply(directives *rfc9111.ResponseDirectives) error {
	if rule.Override != "" {
		log.Trace().Msg("Overriding Cache-Control header")
		if err := replace(directives, rule.Override); err != nil {
			return err
		}
	} else if rule.Default != "" && directives.Len() == 0 {
		log.Trace().Msg("Applying default Cache-Control header")
		if err := replace(directives, rule.Default); err != nil {
			return err
		}
	}
	// sorted, so that new directives are added in a stable order
	names := make([]string, 0, len(rule.Set))
	for name := range rule.Set {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		var value interface{} = rule.Set[name]
		if value == "" {
			value = true
		}
		log.Trace().Msgf("Setting directive %s", name)
		if err := directives.Set(name, value); err != nil {
			return err
		}
	}
	for _, name := range rule.Delete {
		log.Trace().Msgf("Deleting directive %s", name)
		if err := directives.Delete(name); err != nil {
			return err
		}
	}
	return nil
}

func replace(directives *rfc9111.ResponseDirectives, header string) error {
	pairs := rfc9111.ParseCacheControl([]string{header})
	// validate before clearing, so a bad value leaves the directives alone
	if err := rfc9111.NewResponseDirectives(nil, nil).Update(pairs...); err != nil {
		return err
	}
	if err := directives.Clear(); err != nil {
		return err
	}
	return directives.Update(pairs...)
}

func (r Rules) find(res *http.Response) *Rule {
	log.Trace().Msgf("Finding rule for request %s:%s", res.Request.Method, res.Request.URL.Path)
rulesLoop:
	for _, rule := range r {
		log.Trace().Msgf("Checking rule %+v", rule)
		if rule.Method == "" && res.Request.Method != http.MethodGet {
			continue
		}
		if rule.Method != "" && rule.Method != res.Request.Method {
			continue
		}
		if rule.Path != "" && rule.Path != res.Request.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(res.Request.URL.Path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := res.Request.URL.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		return &rule
	}
	return nil
}
