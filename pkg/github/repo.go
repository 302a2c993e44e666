package github

import "regexp"

var repoURLRegex = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/.]+)(\.git)?/?$`)

// Repo is a GitHub repository, e.g. rust-lang/regex.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoURL recognizes https://github.com/<owner>/<repo> URLs, with or
// without a trailing ".git" or slash. Anything else, including deeper paths
// such as /tree/master/subcrate, is not recognized.
func ParseRepoURL(url string) (Repo, bool) {
	m := repoURLRegex.FindStringSubmatch(url)
	if m == nil {
		return Repo{}, false
	}
	return Repo{Owner: m[1], Name: m[2]}, true
}
