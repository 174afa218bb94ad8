package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Property names used by the copilot on the deals object.
const (
	PropDealName        = "dealname"
	PropDealStage       = "dealstage"
	PropAmount          = "amount"
	PropLeadSource      = "lead_source"
	PropCopilotLabel    = "copilot_label"
	PropCopilotScore    = "copilot_score"
	PropCopilotBucket   = "copilot_bucket"
	PropDealDescription = "description"
)

// dealProperties are requested on every deal fetch.
var dealProperties = []string{
	PropDealName,
	PropDealStage,
	PropAmount,
	PropLeadSource,
	PropCopilotLabel,
	PropCopilotScore,
	PropCopilotBucket,
	PropDealDescription,
}

// Deal is a HubSpot CRM deal record
type Deal struct {
	ID           string            `json:"id"`
	Properties   map[string]string `json:"properties"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	Associations map[string]struct {
		Results []AssociationRef `json:"results"`
	} `json:"associations,omitempty"`
}

// AssociationRef points at an associated CRM record
type AssociationRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// CompanyIDs returns the IDs of companies associated with the deal.
func (d *Deal) CompanyIDs() []string {
	assoc, ok := d.Associations["companies"]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(assoc.Results))
	for _, ref := range assoc.Results {
		ids = append(ids, ref.ID)
	}
	return ids
}

// GetDeal fetches a deal with its tracked properties and company associations.
func (c *Client) GetDeal(ctx context.Context, dealID string) (*Deal, error) {
	query := url.Values{}
	query.Set("properties", strings.Join(dealProperties, ","))
	query.Set("associations", "companies")

	var deal Deal
	if err := c.do(ctx, http.MethodGet, "/crm/v3/objects/deals/"+dealID, query, nil, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateDealProperties patches properties on a deal (score/bucket/label
// write-back).
func (c *Client) UpdateDealProperties(ctx context.Context, dealID string, properties map[string]string) error {
	body := map[string]any{"properties": properties}
	return c.do(ctx, http.MethodPatch, "/crm/v3/objects/deals/"+dealID, nil, body, nil)
}

// SearchFilter is a single property filter in a deal search
type SearchFilter struct {
	PropertyName string   `json:"propertyName"`
	Operator     string   `json:"operator"`
	Value        string   `json:"value,omitempty"`
	Values       []string `json:"values,omitempty"`
}

// SearchRequest is the body of a CRM search call
type SearchRequest struct {
	FilterGroups []struct {
		Filters []SearchFilter `json:"filters"`
	} `json:"filterGroups"`
	Properties []string `json:"properties"`
	Limit      int      `json:"limit"`
	After      string   `json:"after,omitempty"`
}

// SearchResponse is one page of search results
type SearchResponse struct {
	Total   int    `json:"total"`
	Results []Deal `json:"results"`
	Paging  *struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging,omitempty"`
}

// SearchDealsByLabel returns one page of deals carrying the given copilot
// label. Pass the previous page's after cursor to continue; an empty
// returned cursor means the last page.
func (c *Client) SearchDealsByLabel(ctx context.Context, label string, limit int, after string) (*SearchResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	req := SearchRequest{
		Properties: dealProperties,
		Limit:      limit,
		After:      after,
	}
	req.FilterGroups = []struct {
		Filters []SearchFilter `json:"filters"`
	}{{
		Filters: []SearchFilter{{
			PropertyName: PropCopilotLabel,
			Operator:     "EQ",
			Value:        label,
		}},
	}}

	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals/search", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to search deals: %w", err)
	}
	return &resp, nil
}

// SearchScoredDeals returns one page of deals that already carry a copilot
// score, used by the nightly re-score pass.
func (c *Client) SearchScoredDeals(ctx context.Context, limit int, after string) (*SearchResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	req := SearchRequest{
		Properties: dealProperties,
		Limit:      limit,
		After:      after,
	}
	req.FilterGroups = []struct {
		Filters []SearchFilter `json:"filters"`
	}{{
		Filters: []SearchFilter{{
			PropertyName: PropCopilotScore,
			Operator:     "HAS_PROPERTY",
		}},
	}}

	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals/search", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to search scored deals: %w", err)
	}
	return &resp, nil
}

// NextAfter extracts the pagination cursor from a search response.
func (r *SearchResponse) NextAfter() string {
	if r.Paging == nil {
		return ""
	}
	return r.Paging.Next.After
}
