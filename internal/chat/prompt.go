package chat

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultGreeting is shown when no greeting file is configured.
const DefaultGreeting = `Bonjour! Ask me about Tour de France stage results.

I can filter the dashboard for you, for example:
- Show only stages since 2015
- Keep riders younger than 25
- Only the stages Cavendish won

Or ask a question, such as "who won the most stages in 2023?"`

// DefaultDataDescription is used when no description file is configured.
const DefaultDataDescription = `Stage-by-stage results of the Tour de France. Each row is one rider finishing one stage in one year.`

var columnNotes = []struct{ name, kind, note string }{
	{"rider", "TEXT", "rider name"},
	{"rank", "INTEGER", "finishing position on the stage; 1 is the stage winner; may be NULL"},
	{"elapsed", "REAL", "stage time in seconds; may be NULL"},
	{"age", "REAL", "rider age in years during that Tour; may be NULL"},
	{"year", "INTEGER", "edition of the Tour"},
	{"stage_results_id", "TEXT", "stage identifier such as stage-1, stage-7a or stage-21"},
}

// systemPrompt assembles the instructions sent ahead of every conversation.
func systemPrompt(description, table, summary string) string {
	var sb strings.Builder
	sb.WriteString("[ROLE]\n")
	sb.WriteString("You help people explore a Tour de France stage-results dashboard. ")
	sb.WriteString("You can answer questions about the data and you can filter the data the dashboard shows.\n\n")

	sb.WriteString("[DATA DESCRIPTION]\n")
	sb.WriteString(strings.TrimSpace(description))
	sb.WriteString("\n\n")

	sb.WriteString("[SCHEMA]\n")
	fmt.Fprintf(&sb, "Table %s:\n", table)
	for _, c := range columnNotes {
		fmt.Fprintf(&sb, "- %s %s: %s\n", c.name, c.kind, c.note)
	}
	sb.WriteString("\n")

	if summary != "" {
		sb.WriteString(strings.TrimSpace(summary))
		sb.WriteString("\n\n")
	}

	sb.WriteString("[RULES]\n")
	fmt.Fprintf(&sb, "- To filter or reorder the dashboard, include exactly one ```sql block holding a single SELECT over %s that returns all six columns (use SELECT * or list them).\n", table)
	sb.WriteString("- The query replaces the current filter; it always runs against the full table.\n")
	sb.WriteString("- To answer without changing the dashboard, do not include any SQL block.\n")
	sb.WriteString("- Only read-only statements are accepted. Keep answers short.\n")
	return sb.String()
}

var sqlBlock = regexp.MustCompile("(?is)```sql[ \\t]*\\n?(.*?)```")

// ExtractSQL returns the body of the first ```sql fenced block in text,
// or "" when there is none.
func ExtractSQL(text string) string {
	m := sqlBlock.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
