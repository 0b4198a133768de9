// Package country exposes a read-through cached view of world country names
// backed by the restcountries public API.
package country

// Country carries the name forms clients pick from when filling in a user's
// country field.
type Country struct {
	CommonName   string            `json:"common_name"`
	OfficialName string            `json:"official_name"`
	NativeNames  map[string]string `json:"native_names,omitempty"`
}
