package vulnerabilitydatabases

const (
	Osv    = "osv"
	Github = "github"
)

var Supported = []string{Osv, Github}

const (
	OsvUrl            = "https://api.osv.dev/v1/query"
	GithubAdvisoryUrl = "https://api.github.com/advisories"
	PypiUrl           = "https://pypi.org"
)

// ecosystem names each database uses for python packages
const (
	OsvEcosystem    = "PyPI"
	GithubEcosystem = "pip"
)
