package catalog

// Endpoint is one configured probe template against a third-party service.
// The table below is the public selection contract: IDs are dense, 1-based
// and stable across releases, so "tapik -s 4" always means the same probe.
type Endpoint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Provider  string `json:"provider"`
	Method    string `json:"method"`
	URL       string `json:"url"`                  // contains {key} unless KeyHeader is set
	KeyHeader string `json:"key_header,omitempty"` // send the key in this header instead of the URL
	Body      string `json:"body,omitempty"`       // JSON body for POST probes
}

// KeyPlaceholder marks where the key is substituted into an endpoint URL.
const KeyPlaceholder = "{key}"

var endpoints = []Endpoint{
	{
		ID:        1,
		Name:      "Google Natural Language API",
		Provider:  "google",
		Method:    "POST",
		URL:       "https://language.googleapis.com/v1/documents:analyzeEntities",
		KeyHeader: "X-Goog-Api-Key",
		Body:      `{"document":{"content":"The rain in Spain stays mainly in the plain.","type":"PLAIN_TEXT"}}`,
	},
	{
		ID:       2,
		Name:     "Google Maps Geocoding API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://maps.googleapis.com/maps/api/geocode/json?key={key}&address=Brazil",
	},
	{
		ID:       3,
		Name:     "Google Books API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://www.googleapis.com/books/v1/volumes?q=isbn:0735619670&key={key}",
	},
	{
		ID:       4,
		Name:     "Google YouTube Data API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://www.googleapis.com/youtube/v3/search?part=snippet&q=python%20programming&key={key}",
	},
	{
		ID:       5,
		Name:     "Google Custom Search API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://www.googleapis.com/customsearch/v1?key={key}&cx=017576662512468239146:omuauf_lfve&q=lectures",
	},
	{
		ID:        6,
		Name:      "Google Translate API",
		Provider:  "google",
		Method:    "POST",
		URL:       "https://translation.googleapis.com/language/translate/v2/detect",
		KeyHeader: "X-Goog-Api-Key",
		Body:      `{"q":"Hola, ¿cómo estás?"}`,
	},
	{
		ID:       7,
		Name:     "Google Places API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://maps.googleapis.com/maps/api/place/findplacefromtext/json?key={key}&input=Museum%20of%20Contemporary%20Art%20Australia&inputtype=textquery",
	},
	{
		ID:       8,
		Name:     "Google Time Zone API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://maps.googleapis.com/maps/api/timezone/json?key={key}&location=34.052235,-118.243683&timestamp=1331161200",
	},
	{
		ID:       9,
		Name:     "Google Civic Information API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://www.googleapis.com/civicinfo/v2/representatives?key={key}&address=1600%20Amphitheatre%20Parkway%20Mountain%20View%2C%20CA%2094043",
	},
	{
		ID:       10,
		Name:     "Google Blogger API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://www.googleapis.com/blogger/v3/blogs/2399953?key={key}",
	},
	{
		ID:       11,
		Name:     "Google Fonts API",
		Provider: "google",
		Method:   "GET",
		URL:      "https://www.googleapis.com/webfonts/v1/webfonts?key={key}",
	},
}

// All returns every endpoint in catalog order.
func All() []Endpoint {
	out := make([]Endpoint, len(endpoints))
	copy(out, endpoints)
	return out
}

// ByID returns the endpoint with the given ID.
func ByID(id int) (Endpoint, bool) {
	if id < 1 || id > len(endpoints) {
		return Endpoint{}, false
	}
	return endpoints[id-1], true
}

// ByProvider returns the endpoints tagged with the given provider, in
// catalog order.
func ByProvider(provider string) []Endpoint {
	out := make([]Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		if ep.Provider == provider {
			out = append(out, ep)
		}
	}
	return out
}
