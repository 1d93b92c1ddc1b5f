package tkapi

import "time"

// FetchedItem is the normalized shape of one legislative item as
// returned by a parliamentary data source. ZaakID is globally unique in
// the source system and serves as the idempotency key downstream;
// ZaakNummer is the human-readable reference and is not unique.
type FetchedItem struct {
	ZaakID     string
	ZaakNummer string

	Title        string
	Subject      string
	Date         *time.Time
	Deadline     *time.Time
	Ministry     string
	Submitters   []string
	DocumentText string
	DocumentURL  string

	// ExtraData carries source fields that have no dedicated column,
	// keyed by source field name.
	ExtraData map[string]string
}

// odataZaak mirrors the subset of the Tweede Kamer OData Zaak entity
// the pipeline consumes.
type odataZaak struct {
	ID          string     `json:"Id"`
	Nummer      string     `json:"Nummer"`
	Titel       string     `json:"Titel"`
	Onderwerp   string     `json:"Onderwerp"`
	Soort       string     `json:"Soort"`
	GestartOp   *time.Time `json:"GestartOp"`
	Termijn     *time.Time `json:"Termijn"`
	Organisatie string     `json:"Organisatie"`

	Kabinetsappreciatie string `json:"Kabinetsappreciatie"`

	Actors []odataZaakActor `json:"ZaakActor"`
}

type odataZaakActor struct {
	Naam    string `json:"ActorNaam"`
	Relatie string `json:"Relatie"`
}

type odataResponse struct {
	Value []odataZaak `json:"value"`
}
