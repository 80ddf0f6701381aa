// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry. The zero value means "no entry".
type Id int

const (
	RootNotFoundId Id = iota + 1
	InvalidMarkersId
	ConfigLoadFailedId
	ServiceURLMissingId
	CredentialsUnavailableId
	PermissionDeniedId
)

type (
	// MarkdownMsg is guidance text in Markdown.
	MarkdownMsg string

	// HttpLink is an external reference.
	HttpLink string

	// Issue is a catalog entry with longer remediation guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	rootNotFoundIssue = &Issue{
		id: RootNotFoundId,
		mdMsg: `
# Submission directory not found

The directory to scan does not exist or is not a directory.

## Things you can try
- Run from the directory that holds your assignment files, or pass it explicitly:
~~~
$ autosubmit --root ./a03
~~~
- Check the ` + "`scan`" + ` section of your config file.`,
	}

	invalidMarkersIssue = &Issue{
		id: InvalidMarkersId,
		mdMsg: `
# Invalid annotation markers

Every marker entry needs an extension with a single leading dot and a
non-empty marker without whitespace. Each extension may appear once.

## Example
~~~cue
markers: [
	{extension: ".rkt", marker: ";;;(autosubmit"},
	{extension: ".c", marker: "//(autosubmit"},
	{extension: ".h", marker: "//(autosubmit"},
]
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

The config file is not valid CUE or does not match the schema.

## Things you can try
- Print the effective configuration:
~~~
$ autosubmit config show
~~~
- Write a fresh default file and compare:
~~~
$ autosubmit config init
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	serviceURLMissingIssue = &Issue{
		id: ServiceURLMissingId,
		mdMsg: `
# No grading service configured

Annotated files were found but there is nowhere to submit them.

## Things you can try
- Set the service URL in your config file:
~~~cue
service: url: "https://grader.example.edu/api"
~~~
- Or in the environment:
~~~
$ AUTOSUBMIT_SERVICE_URL=https://grader.example.edu/api autosubmit
~~~
- Preview what would be submitted with ` + "`--dry-run`" + `.`,
	}

	credentialsUnavailableIssue = &Issue{
		id: CredentialsUnavailableId,
		mdMsg: `
# Credentials unavailable

No terminal is attached to prompt for a username and password, and the
environment does not provide them.

## Things you can try
~~~
$ export AUTOSUBMIT_USERNAME=jdoe
$ export AUTOSUBMIT_PASSWORD=...
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied

Some files or directories could not be read. They were skipped and will
not be submitted.

## Things you can try
- Check ownership and permissions of the listed paths.
- Re-run with ` + "`--verbose`" + ` to see every skipped path.`,
	}

	issues = map[Id]*Issue{
		rootNotFoundIssue.id:           rootNotFoundIssue,
		invalidMarkersIssue.id:         invalidMarkersIssue,
		configLoadFailedIssue.id:       configLoadFailedIssue,
		serviceURLMissingIssue.id:      serviceURLMissingIssue,
		credentialsUnavailableIssue.id: credentialsUnavailableIssue,
		permissionDeniedIssue.id:       permissionDeniedIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the guidance with a "See also" section for any links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(string(i.mdMsg)))
	if len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

// Render renders the guidance for a terminal using the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
