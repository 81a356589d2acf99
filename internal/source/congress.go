package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fragmede/ingest/internal/config"
	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultCongressURL = "https://api.congress.gov/v3/bill"
	CongressNoComments = "(Congress.gov does not include comments)"
)

// Congress ingests the most recently updated bill from the Congress.gov
// API, with its sponsor and latest summary when those requests succeed.
type Congress struct {
	Fetcher
	BaseURL string
	APIKey  string
	Log     *slog.Logger
}

type congressAction struct {
	ActionDate string `json:"actionDate"`
	Text       string `json:"text"`
}

type congressBill struct {
	Congress      int            `json:"congress"`
	Number        string         `json:"number"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	OriginChamber string         `json:"originChamber"`
	LatestAction  congressAction `json:"latestAction"`
	URL           string         `json:"url"`

	// Detail only.
	IntroducedDate string `json:"introducedDate"`
	LegislationURL string `json:"legislationUrl"`
	PolicyArea     *struct {
		Name string `json:"name"`
	} `json:"policyArea"`
	Sponsors []struct {
		FullName string `json:"fullName"`
		Party    string `json:"party"`
		State    string `json:"state"`
	} `json:"sponsors"`
	Summaries *struct {
		Count int    `json:"count"`
		URL   string `json:"url"`
	} `json:"summaries"`
}

type congressSummary struct {
	ActionDate string `json:"actionDate"`
	ActionDesc string `json:"actionDesc"`
	Text       string `json:"text"`
}

var billTypes = map[string]string{
	"HR":      "House Bill",
	"S":       "Senate Bill",
	"HJRES":   "House Joint Resolution",
	"SJRES":   "Senate Joint Resolution",
	"HCONRES": "House Concurrent Resolution",
	"SCONRES": "Senate Concurrent Resolution",
	"HRES":    "House Simple Resolution",
	"SRES":    "Senate Simple Resolution",
}

func (c *Congress) Name() string { return "congress" }

func (c *Congress) Description() string {
	return "most recently updated bill from Congress.gov (needs " + config.EnvCongressKey + ")"
}

func (c *Congress) Fetch(ctx context.Context) (*Record, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: set %s", c.Name(), ErrMissingCredential, config.EnvCongressKey)
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultCongressURL
	}
	log := c.Log
	if log == nil {
		log = slog.Default()
	}

	var list struct {
		Bills []congressBill `json:"bills"`
	}
	body, err := c.get(ctx, c.Name(), c.withKey(base+"?limit=5&format=json"), nil)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(c.Name(), body, &list); err != nil {
		return nil, err
	}
	if len(list.Bills) == 0 {
		return nil, ErrNoContent
	}
	bill := list.Bills[0]

	// Detail and summary are best effort; the list entry is enough to report.
	var detail struct {
		Bill congressBill `json:"bill"`
	}
	if bill.URL != "" {
		body, err := c.get(ctx, c.Name(), c.withKey(bill.URL), nil)
		if err == nil {
			err = decodeJSON(c.Name(), body, &detail)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			log.Warn("bill detail unavailable", slog.String("bill", bill.Type+"-"+bill.Number), slog.Any("error", err))
		} else {
			bill = mergeBill(bill, detail.Bill)
		}
	}

	var summary *congressSummary
	if bill.Summaries != nil && bill.Summaries.Count > 0 && bill.Summaries.URL != "" {
		var resp struct {
			Summaries []congressSummary `json:"summaries"`
		}
		body, err := c.get(ctx, c.Name(), c.withKey(bill.Summaries.URL), nil)
		if err == nil {
			err = decodeJSON(c.Name(), body, &resp)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		switch {
		case err != nil:
			log.Warn("bill summary unavailable", slog.String("bill", bill.Type+"-"+bill.Number), slog.Any("error", err))
		case len(resp.Summaries) > 0:
			summary = &resp.Summaries[0]
		}
	}

	link := bill.LegislationURL
	if link == "" {
		link = fmt.Sprintf("https://www.congress.gov/bill/%dth-congress/%s/%s",
			bill.Congress, strings.ToLower(bill.Type), bill.Number)
	}

	return &Record{
		Source:   c.Name(),
		Title:    render.NormalizeInline(bill.Title),
		Text:     billText(bill, summary, link),
		Comments: CongressNoComments,
		URL:      link,
	}, nil
}

// withKey adds the api_key parameter to raw, keeping its existing query.
func (c *Congress) withKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("api_key", c.APIKey)
	if q.Get("format") == "" {
		q.Set("format", "json")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// mergeBill overlays the detail fields onto the list entry.
func mergeBill(list, detail congressBill) congressBill {
	out := detail
	if out.Title == "" {
		out.Title = list.Title
	}
	if out.Type == "" {
		out.Type = list.Type
	}
	if out.Number == "" {
		out.Number = list.Number
	}
	if out.Congress == 0 {
		out.Congress = list.Congress
	}
	if out.OriginChamber == "" {
		out.OriginChamber = list.OriginChamber
	}
	if out.LatestAction.ActionDate == "" {
		out.LatestAction = list.LatestAction
	}
	out.URL = list.URL
	return out
}

func billText(b congressBill, summary *congressSummary, link string) string {
	kind := billTypes[strings.ToUpper(b.Type)]
	if kind == "" {
		kind = b.Type
	}
	sponsor, party, state := "Unknown", "Unknown", "Unknown"
	if len(b.Sponsors) > 0 {
		sponsor, party, state = b.Sponsors[0].FullName, b.Sponsors[0].Party, b.Sponsors[0].State
	}
	policy := "Not specified"
	if b.PolicyArea != nil && b.PolicyArea.Name != "" {
		policy = b.PolicyArea.Name
	}
	introduced := b.IntroducedDate
	if introduced == "" {
		introduced = "Unknown"
	}

	var sb strings.Builder
	if summary != nil {
		if text := render.Normalize(summary.Text); text != "" {
			sb.WriteString(text + "\n\n")
		}
	}
	fmt.Fprintf(&sb, "Bill: %s %s (%dth Congress)\n", b.Type, b.Number, b.Congress)
	fmt.Fprintf(&sb, "Type: %s\n", kind)
	fmt.Fprintf(&sb, "Chamber: %s\n", b.OriginChamber)
	fmt.Fprintf(&sb, "Sponsor: %s [%s-%s]\n", sponsor, party, state)
	fmt.Fprintf(&sb, "Policy Area: %s\n", policy)
	fmt.Fprintf(&sb, "Introduced: %s\n", introduced)
	fmt.Fprintf(&sb, "Latest Action (%s): %s\n", b.LatestAction.ActionDate, render.NormalizeInline(b.LatestAction.Text))
	if summary != nil {
		fmt.Fprintf(&sb, "Summary: %s (%s)\n", summary.ActionDesc, summary.ActionDate)
	} else {
		sb.WriteString("Summary: Not available yet\n")
	}
	sb.WriteString("URL: " + link)
	return sb.String()
}
