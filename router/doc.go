// Package router scores registered agents against request text and owns the
// regex rule table used for fast single-agent classification.
//
// Two paths exist: CommandParser.Classify is the ordered first-match fast
// path, Router.SelectAgent is the scoring pass over every indexed agent.
// The scoring heuristic is pluggable via the Scorer interface.
package router
