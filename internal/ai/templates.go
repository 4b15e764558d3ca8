package ai

// Template describes a legal document type the drafting endpoint can
// generate.
type Template struct {
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredFields []string `json:"requiredFields"`
}

var documentTemplates = []Template{
	{
		Type:           "employment_contract",
		Title:          "Employment Contract",
		Description:    "Standard employment agreement between employer and employee",
		RequiredFields: []string{"employer_name", "employee_name", "position", "salary", "start_date", "duration"},
	},
	{
		Type:           "affidavit",
		Title:          "Affidavit",
		Description:    "Sworn statement under oath",
		RequiredFields: []string{"declarant_name", "statement", "date"},
	},
	{
		Type:           "power_of_attorney",
		Title:          "Power of Attorney",
		Description:    "Legal authorization for one person to act on behalf of another",
		RequiredFields: []string{"principal_name", "agent_name", "powers", "effective_date"},
	},
	{
		Type:           "tenancy_agreement",
		Title:          "Tenancy Agreement",
		Description:    "Agreement between landlord and tenant for property rental",
		RequiredFields: []string{"landlord_name", "tenant_name", "property_address", "rent_amount", "lease_start", "lease_end"},
	},
	{
		Type:           "sales_agreement",
		Title:          "Sales Agreement",
		Description:    "Agreement for the sale of goods or services",
		RequiredFields: []string{"seller_name", "buyer_name", "item_description", "price", "delivery_date"},
	},
	{
		Type:           "demand_letter",
		Title:          "Demand Letter",
		Description:    "Formal letter demanding payment or action",
		RequiredFields: []string{"sender_name", "recipient_name", "claim_details", "amount_demanded", "deadline"},
	},
}

func templateByType(docType string) (Template, bool) {
	for _, tpl := range documentTemplates {
		if tpl.Type == docType {
			return tpl, true
		}
	}
	return Template{}, false
}
