package router

import (
	"regexp"

	"go.uber.org/zap"
)

// Built-in agent ids the default rule table routes to. The concrete agents
// live outside this module; these ids are the contract points.
const (
	AgentDocumentProcessor = "document_processor"
	AgentArchiveSearch     = "archive_search"
	AgentLiveData          = "live_data"
	AgentHelpSystem        = "help_system"
)

// Default intents.
const (
	IntentDocumentProcessing = "document_processing"
	IntentArchiveSearch      = "archive_search"
	IntentLiveData           = "live_data"
	IntentHelp               = "help"
	IntentSearch             = "search"
)

// DefaultRules returns the built-in classification table. Order matters:
// document processing rules are checked before archive search, which is
// checked before live data. Reordering this table changes routing results.
func DefaultRules() []Rule {
	return []Rule{
		// Document processing
		{Pattern: regexp.MustCompile(`analyze\s+(.+)`), Intent: IntentDocumentProcessing, AgentID: AgentDocumentProcessor},
		{Pattern: regexp.MustCompile(`process\s+(.+)`), Intent: IntentDocumentProcessing, AgentID: AgentDocumentProcessor},
		{Pattern: regexp.MustCompile(`extract\s+(.+)`), Intent: IntentDocumentProcessing, AgentID: AgentDocumentProcessor},
		{Pattern: regexp.MustCompile(`summarize\s+(.+)`), Intent: IntentDocumentProcessing, AgentID: AgentDocumentProcessor},
		{Pattern: regexp.MustCompile(`read\s+(.+)`), Intent: IntentDocumentProcessing, AgentID: AgentDocumentProcessor},
		{Pattern: regexp.MustCompile(`understand\s+(.+)`), Intent: IntentDocumentProcessing, AgentID: AgentDocumentProcessor},

		// Archive search
		{Pattern: regexp.MustCompile(`search\s+for\s+(.+)`), Intent: IntentArchiveSearch, AgentID: AgentArchiveSearch},
		{Pattern: regexp.MustCompile(`find\s+(.+)`), Intent: IntentArchiveSearch, AgentID: AgentArchiveSearch},
		{Pattern: regexp.MustCompile(`look\s+for\s+(.+)`), Intent: IntentArchiveSearch, AgentID: AgentArchiveSearch},
		{Pattern: regexp.MustCompile(`show\s+me\s+(.+)`), Intent: IntentArchiveSearch, AgentID: AgentArchiveSearch},
		{Pattern: regexp.MustCompile(`get\s+documents?\s+about\s+(.+)`), Intent: IntentArchiveSearch, AgentID: AgentArchiveSearch},

		// Live data
		{Pattern: regexp.MustCompile(`get\s+live\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`fetch\s+current\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`real[- ]?time\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`current\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`weather\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`(.+)\s+weather`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`what\s+is\s+the\s+weather\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`how\s+is\s+the\s+weather\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`temperature\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`(.+)\s+temperature`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`climate\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},
		{Pattern: regexp.MustCompile(`forecast\s+(.+)`), Intent: IntentLiveData, AgentID: AgentLiveData},

		// Help
		{Pattern: regexp.MustCompile(`help`), Intent: IntentHelp, AgentID: AgentHelpSystem},
		{Pattern: regexp.MustCompile(`what\s+can\s+you\s+do`), Intent: IntentHelp, AgentID: AgentHelpSystem},
		{Pattern: regexp.MustCompile(`commands?`), Intent: IntentHelp, AgentID: AgentHelpSystem},
		{Pattern: regexp.MustCompile(`capabilities`), Intent: IntentHelp, AgentID: AgentHelpSystem},
		{Pattern: regexp.MustCompile(`how\s+to\s+use`), Intent: IntentHelp, AgentID: AgentHelpSystem},
	}
}

// NewDefaultParser builds a parser over DefaultRules with the archive search
// agent as the fallback, mirroring the system's "when in doubt, search"
// behavior.
func NewDefaultParser(logger *zap.Logger) *CommandParser {
	return NewCommandParser(DefaultRules(), AgentArchiveSearch, IntentSearch, logger)
}
