package hubspot

import (
	"context"
	"net/http"
	"net/url"
)

// Property names used on the companies object.
const (
	PropCompanyName   = "name"
	PropIndustry      = "industry"
	PropEmployeeCount = "numberofemployees"
)

// Company is a HubSpot CRM company record
type Company struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// GetCompany fetches a company with the properties the scoring model reads.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*Company, error) {
	query := url.Values{}
	query.Set("properties", PropCompanyName+","+PropIndustry+","+PropEmployeeCount)

	var company Company
	if err := c.do(ctx, http.MethodGet, "/crm/v3/objects/companies/"+companyID, query, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}
