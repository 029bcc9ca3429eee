package rationale

const (
	Performance   = "performance"
	Modernization = "modernization"
	Security      = "security"
)

func IsValid(tag string) bool {
	return tag == Performance || tag == Modernization || tag == Security
}
