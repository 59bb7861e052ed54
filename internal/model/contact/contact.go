package contact

// Contact is a single phonebook entry.
type Contact struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Input carries the client-supplied fields of a contact. The id is always
// assigned by the store.
type Input struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Complete reports whether both name and number are present.
func (in Input) Complete() bool {
	return in.Name != "" && in.Number != ""
}

// Seed provides the contacts the service starts with.
func Seed() []Contact {
	return []Contact{
		{ID: 1, Name: "Arto Hellas", Number: "040-123456"},
		{ID: 2, Name: "Ada Lovelace", Number: "39-44-5323523"},
		{ID: 3, Name: "Dan Abramov", Number: "12-43-234345"},
		{ID: 4, Name: "Mary Poppendieck", Number: "39-23-6423122"},
	}
}
