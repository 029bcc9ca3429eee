package modernizationadvisorservice

import (
	"github.com/RobsonDevCode/pyninja/internal/constants/rationale"
	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
)

// builtinAlternatives is keyed by normalized package name and never mutated.
var builtinAlternatives = map[string]scannermodels.Alternative{
	// python 2 era packages
	"mysql-python":     {Replacement: "PyMySQL", Rationale: rationale.Modernization, Note: "MySQL-python is unmaintained and Python 2 only"},
	"python-memcached": {Replacement: "pymemcache", Rationale: rationale.Modernization, Note: "actively maintained memcached client"},
	"pil":              {Replacement: "Pillow", Rationale: rationale.Modernization, Note: "PIL is unmaintained, Pillow is the maintained fork"},
	"distribute":       {Replacement: "setuptools", Rationale: rationale.Modernization, Note: "distribute was merged back into setuptools"},
	"beautifulsoup":    {Replacement: "beautifulsoup4", Rationale: rationale.Modernization, Note: "BeautifulSoup 3 is Python 2 only"},
	"markdown2":        {Replacement: "markdown", Rationale: rationale.Modernization, Note: "Python-Markdown is the reference implementation"},
	"pytz":             {Replacement: "zoneinfo", Rationale: rationale.Modernization, Note: "zoneinfo is in the standard library from Python 3.9"},
	"nose":             {Replacement: "pytest", Rationale: rationale.Modernization, Note: "nose is no longer maintained"},
	"simplejson":       {Replacement: "json", Rationale: rationale.Modernization, Note: "the standard library json module covers most uses"},

	// back-ports that are part of Python 3
	"unittest2":    {Rationale: rationale.Modernization, Note: "unittest has these features since Python 3"},
	"mock":         {Rationale: rationale.Modernization, Note: "unittest.mock is built in since Python 3.3"},
	"futures":      {Rationale: rationale.Modernization, Note: "concurrent.futures is built in since Python 3.2"},
	"enum34":       {Rationale: rationale.Modernization, Note: "enum is built in since Python 3.4"},
	"pathlib":      {Rationale: rationale.Modernization, Note: "pathlib is built in since Python 3.4"},
	"configparser": {Rationale: rationale.Modernization, Note: "configparser is built in since Python 3"},
	"ipaddress":    {Rationale: rationale.Modernization, Note: "ipaddress is built in since Python 3.3"},
	"six":          {Rationale: rationale.Modernization, Note: "not needed on Python 3"},
	"typing":       {Rationale: rationale.Modernization, Note: "typing is built in since Python 3.5"},

	// security
	"pycrypto":   {Replacement: "pycryptodome", Rationale: rationale.Security, Note: "pycrypto is unmaintained with known vulnerabilities"},
	"py-bcrypt":  {Replacement: "bcrypt", Rationale: rationale.Security, Note: "py-bcrypt is unmaintained"},
	"pyopenssl":  {Replacement: "cryptography", Rationale: rationale.Security, Note: "pyOpenSSL recommends using cryptography directly"},
	"md5":        {Replacement: "hashlib", Rationale: rationale.Security, Note: "use hashlib with a modern algorithm"},
	"sha":        {Replacement: "hashlib", Rationale: rationale.Security, Note: "use hashlib with a modern algorithm"},
	"python-jose": {Replacement: "joserfc", Rationale: rationale.Security, Note: "python-jose has unpatched advisories"},

	// performance, only offered with performance focus
	"requests": {Replacement: "httpx", Rationale: rationale.Performance, Note: "async support and HTTP/2"},
	"urllib3":  {Replacement: "httpx", Rationale: rationale.Performance, Note: "async support and HTTP/2"},
	"ujson":    {Replacement: "orjson", Rationale: rationale.Performance, Note: "faster serialization with correct float handling"},
	"pandas":   {Replacement: "polars", Rationale: rationale.Performance, Note: "multi-threaded columnar engine"},
	"pillow":   {Replacement: "pillow-simd", Rationale: rationale.Performance, Note: "SIMD accelerated drop-in fork, useful in containers"},
	"psycopg2": {Replacement: "psycopg2-binary", Rationale: rationale.Performance, Note: "prebuilt wheels for simpler container builds"},
	"dill":     {Replacement: "cloudpickle", Rationale: rationale.Performance, Note: "faster serialization of closures"},
}
