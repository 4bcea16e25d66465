package server

import (
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/normalize"
)

type reservationView struct {
	Row         int           `json:"row"`
	GuestName   string        `json:"guestName"`
	CheckIn     string        `json:"checkInDate"`
	CheckOut    string        `json:"checkOutDate"`
	Guests      string        `json:"guests"`
	TotalAmount string        `json:"totalAmount"`
	Platform    string        `json:"platform"`
	Contact     string        `json:"contact,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	NeedsReview bool          `json:"needsReview,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Conflict    *conflictView `json:"conflict,omitempty"`
}

type conflictView struct {
	ID        int    `json:"id,omitempty"`
	GuestName string `json:"guestName"`
	CheckIn   string `json:"checkInDate"`
	CheckOut  string `json:"checkOutDate"`
}

type invalidView struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

type resultsView struct {
	Valid      []reservationView `json:"valid"`
	Duplicates []reservationView `json:"duplicates"`
	Invalid    []invalidView     `json:"invalid"`
}

type uploadResponse struct {
	Success         bool           `json:"success"`
	RunID           string         `json:"runId"`
	PropertyName    string         `json:"propertyName"`
	MatchedProperty string         `json:"matchedProperty,omitempty"`
	TotalFound      int            `json:"totalFound"`
	Summary         entity.Summary `json:"summary"`
	Results         resultsView    `json:"results"`
	Created         int            `json:"created"`
	Error           string         `json:"error,omitempty"`
}

func uploadView(r *importer.Report) uploadResponse {
	out := uploadResponse{
		Success:         r.Success,
		RunID:           r.RunID,
		PropertyName:    r.PropertyName,
		MatchedProperty: r.MatchedProperty,
		TotalFound:      r.TotalFound,
		Summary:         r.Summary,
		Created:         r.Created,
		Error:           r.Error,
		Results: resultsView{
			Valid:      make([]reservationView, 0, len(r.Valid)),
			Duplicates: make([]reservationView, 0, len(r.Duplicates)),
			Invalid:    make([]invalidView, 0, len(r.Invalid)),
		},
	}
	for _, o := range r.Valid {
		out.Results.Valid = append(out.Results.Valid, recordView(o))
	}
	for _, o := range r.Duplicates {
		out.Results.Duplicates = append(out.Results.Duplicates, recordView(o))
	}
	for _, o := range r.Invalid {
		errs := o.Errors
		if errs == nil {
			errs = []string{}
		}
		out.Results.Invalid = append(out.Results.Invalid, invalidView{Row: o.Row, Errors: errs})
	}
	return out
}

func recordView(o entity.ValidationOutcome) reservationView {
	rec := o.Record
	v := reservationView{
		Row:         o.Row,
		GuestName:   rec.GuestName,
		CheckIn:     normalize.DisplayDate(rec.CheckIn),
		CheckOut:    normalize.DisplayDate(rec.CheckOut),
		Guests:      rec.Guests,
		TotalAmount: rec.TotalAmount,
		Platform:    rec.Platform,
		Contact:     rec.Contact,
		Notes:       rec.Notes,
		NeedsReview: rec.NeedsReview,
		Warnings:    o.Errors,
	}
	if c := o.Conflict; c != nil {
		v.Conflict = &conflictView{
			ID:        c.ID,
			GuestName: c.GuestName,
			CheckIn:   normalize.DisplayDate(c.CheckIn),
			CheckOut:  normalize.DisplayDate(c.CheckOut),
		}
	}
	return v
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func failErr(c *gin.Context, err error) {
	c.JSON(common.HTTPStatus(err), errorBody(err))
}

func errorBody(err error) gin.H {
	body := gin.H{"success": false, "error": common.MessageOf(err)}
	if code := common.CodeOf(err); code != "" {
		body["code"] = code
	}
	return body
}
