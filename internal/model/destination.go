package model

// Destination is one guessable puzzle entity: a city reachable through
// cryptic clues, with facts and trivia revealed once the round resolves.
// City names are the uniqueness key for multiple-choice option sets; two
// destinations sharing a city name are treated as the same option.
type Destination struct {
	ID        string   `json:"id"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Continent string   `json:"continent,omitempty"`
	Clues     []string `json:"clues"`
	FunFacts  []string `json:"fun_facts"`
	Trivia    []string `json:"trivia"`
	ImageURL  string   `json:"image_url,omitempty"`
}

// AnswerOption is a single multiple-choice entry shown to the player.
type AnswerOption struct {
	ID      string `json:"id"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// CorrectAnswer echoes the solution back to the client for display
// bookkeeping. The client is trusted; this is not a security boundary.
type CorrectAnswer struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	ImageURL string `json:"image_url,omitempty"`
}

// Option-set sizing. BuildAnswerOptions cannot terminate on a catalog with
// fewer than AnswerOptionCount distinct city names; seeding at least that
// many is a deployment precondition.
const AnswerOptionCount = 4

// DestinationRecord is a tolerant import row. Scraped and AI-expanded
// datasets are inconsistent about the fun-facts key, so both spellings are
// accepted; missing fields default to empty.
type DestinationRecord struct {
	City       string   `json:"city"`
	Country    string   `json:"country"`
	Continent  string   `json:"continent,omitempty"`
	Clues      []string `json:"clues"`
	FunFacts   []string `json:"fun_facts"`
	FunFactAlt []string `json:"fun_fact"`
	Trivia     []string `json:"trivia"`
	ImageURL   string   `json:"image_url,omitempty"`
}

// Normalize maps an import record onto the canonical Destination shape.
func (r DestinationRecord) Normalize() Destination {
	funFacts := r.FunFacts
	if len(funFacts) == 0 {
		funFacts = r.FunFactAlt
	}
	if funFacts == nil {
		funFacts = []string{}
	}
	clues := r.Clues
	if clues == nil {
		clues = []string{}
	}
	trivia := r.Trivia
	if trivia == nil {
		trivia = []string{}
	}
	return Destination{
		City:      r.City,
		Country:   r.Country,
		Continent: r.Continent,
		Clues:     clues,
		FunFacts:  funFacts,
		Trivia:    trivia,
		ImageURL:  r.ImageURL,
	}
}

// CreateDestinationRequest represents a request to add a single destination
type CreateDestinationRequest struct {
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Continent string   `json:"continent,omitempty"`
	Clues     []string `json:"clues"`
	FunFacts  []string `json:"fun_facts"`
	Trivia    []string `json:"trivia"`
	ImageURL  string   `json:"image_url,omitempty"`
}

// Validate checks required fields and returns one FieldError per failure
func (r *CreateDestinationRequest) Validate() []FieldError {
	var errs []FieldError
	if r.City == "" {
		errs = append(errs, FieldError{Field: "city", Message: "city is required"})
	}
	if r.Country == "" {
		errs = append(errs, FieldError{Field: "country", Message: "country is required"})
	}
	return errs
}

// RandomRound is the stateless round served by GET /v1/destinations/random.
type RandomRound struct {
	DestinationID string         `json:"destination_id"`
	Clues         []string       `json:"clues"`
	AnswerOptions []AnswerOption `json:"answer_options"`
	FunFact       string         `json:"fun_fact,omitempty"`
	CorrectAnswer CorrectAnswer  `json:"correct_answer"`
}

// ValidateAnswerRequest represents a standalone answer validation. Game and
// user bindings are optional; when present the matching round is resolved
// and the user's aggregate stats are updated.
type ValidateAnswerRequest struct {
	DestinationID string `json:"destination_id"`
	Answer        string `json:"answer"`
	UserID        string `json:"user_id,omitempty"`
	GameID        string `json:"game_id,omitempty"`
	RoundIndex    int    `json:"round_index,omitempty"`
}

// Validate checks required fields
func (r *ValidateAnswerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.DestinationID == "" {
		errs = append(errs, FieldError{Field: "destination_id", Message: "destination_id is required"})
	}
	if r.Answer == "" {
		errs = append(errs, FieldError{Field: "answer", Message: "answer is required"})
	}
	return errs
}
