package review

// topicDefinition pairs a topic with the keywords used to claim paragraphs.
// Declaration order is load-bearing: keyword-score ties resolve to the first
// topic in this list that reaches the max score.
type topicDefinition struct {
	ID       TopicID
	Name     string
	Keywords []string
}

// topicCatalog is the fixed set of KYC topics. Every topic except "other"
// appears in every assembly result, even when no paragraph matched it.
var topicCatalog = []topicDefinition{
	{
		ID:   TopicClientIdentity,
		Name: "Client Identity",
		Keywords: []string{
			"client identity", "passport", "national id", "identity card",
			"date of birth", "born", "full name", "nationality",
			"identity document", "proof of identity", "residence permit",
		},
	},
	{
		ID:   TopicSourceOfWealth,
		Name: "Source of Wealth",
		Keywords: []string{
			"source of wealth", "source of funds", "salary", "income",
			"inheritance", "savings", "dividends", "sale of business",
			"employment", "annual earnings", "proceeds",
		},
	},
	{
		ID:   TopicBusinessRelationship,
		Name: "Business Relationship",
		Keywords: []string{
			"business relationship", "purpose of account", "account purpose",
			"intended use", "products and services", "banking services",
			"relationship manager", "onboarding purpose",
		},
	},
	{
		ID:   TopicBeneficialOwnership,
		Name: "Beneficial Ownership",
		Keywords: []string{
			"beneficial owner", "ubo", "ownership structure", "shareholder",
			"controlling interest", "holding company", "shares held",
			"ownership percentage",
		},
	},
	{
		ID:   TopicRiskProfile,
		Name: "Risk Profile",
		Keywords: []string{
			"risk profile", "risk rating", "risk appetite", "risk category",
			"risk classification", "client risk", "low risk", "high risk",
		},
	},
	{
		ID:   TopicSanctionsPEP,
		Name: "Sanctions / PEP",
		Keywords: []string{
			"sanction", "pep", "politically exposed", "watchlist",
			"embargo", "ofac", "screening", "adverse media",
		},
	},
	{
		ID:   TopicTransactionPatterns,
		Name: "Transaction Patterns",
		Keywords: []string{
			"transaction", "wire transfer", "payment pattern", "cash deposit",
			"turnover", "remittance", "transfer volume", "incoming payments",
		},
	},
}

// TopicName returns the display name for a topic, falling back to the raw id.
func TopicName(id TopicID) string {
	for _, def := range topicCatalog {
		if def.ID == id {
			return def.Name
		}
	}
	if id == TopicOther {
		return "Other"
	}
	return string(id)
}
