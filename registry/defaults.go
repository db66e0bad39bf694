package registry

// Names of the features the bot ships with.
const (
	CodeblockRecommendations = "PYTHON_CODEBLOCK_RECOMMENDATIONS"
	DiscordTokenRemover      = "DISCORD_BOT_TOKEN_FILTER"
	DiscordWebhookRemover    = "DISCORD_WEBHOOK_FILTER"
	GithubCommentLinks       = "GITHUB_EXPAND_COMMENT_LINKS"
	GithubDiscussions        = "GITHUB_AUTOLINK_DISCUSSIONS"
	GithubIssueExpand        = "GITHUB_AUTOLINK_ISSUE_SHOW_DESCRIPTION"
	GithubIssueLinks         = "GITHUB_EXPAND_ISSUE_LINKS"
	GlobalSource             = "GLOBAL_SOURCE_COMMAND"
	InlineDocs               = "INLINE_DOCUMENTATION"
	InlineEvaluation         = "INLINE_EVALULATION"
	PypiAutocomplete         = "PYPI_PACKAGE_AUTOCOMPLETE"
	PythonDiscourseAutolink  = "PYTHON_DISCOURSE_AUTOLINK"
	RuffRuleV2               = "RUFF_RULE_V2"
	SourceAutocomplete       = "META_SOURCE_COMMAND_AUTOCOMPLETE"
)

var defaultFeatures = []Feature{
	{Name: CodeblockRecommendations, Description: "Suggest code blocks for unformatted Python code", EnabledByDefault: true},
	{Name: DiscordTokenRemover, Description: "Delete messages containing Discord bot tokens", EnabledByDefault: true},
	{Name: DiscordWebhookRemover, Description: "Delete messages containing Discord webhook URLs", EnabledByDefault: true},
	{Name: GithubCommentLinks, Description: "Expand links to GitHub issue and pull request comments"},
	{Name: GithubDiscussions, Description: "Autolink GitHub discussions"},
	{Name: GithubIssueExpand, Description: "Show the issue body when autolinking GitHub issues"},
	{Name: GithubIssueLinks, Description: "Expand links to GitHub issues and pull requests", EnabledByDefault: true},
	{Name: GlobalSource, Description: "Source command for arbitrary Python objects"},
	{Name: InlineDocs, Description: "Render documentation lookups inline"},
	{Name: InlineEvaluation, Description: "Evaluate inline code snippets"},
	{Name: PypiAutocomplete, Description: "Autocomplete PyPI package names", EnabledByDefault: true},
	{Name: PythonDiscourseAutolink, Description: "Autolink discuss.python.org topics"},
	{Name: RuffRuleV2, Description: "Second generation ruff rule embeds"},
	{Name: SourceAutocomplete, Description: "Autocomplete for the source command", EnabledByDefault: true},
}

// Default returns a sealed registry holding the built-in features.
func Default() *Registry {
	r := New()
	for _, f := range defaultFeatures {
		if err := r.Register(f.Name, f.Description, f.EnabledByDefault); err != nil {
			panic(err)
		}
	}
	r.Seal()
	return r
}
