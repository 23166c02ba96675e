package types

const (
	RoleProductLead      = "Product Lead"
	RoleTechLead         = "Tech Lead"
	RoleComplianceLead   = "Compliance Lead"
	RoleBankAllianceLead = "Bank Alliance Lead"
)

// Roles lists the enumerated stakeholder roles in a fixed order, so prompts
// built from them are reproducible.
var Roles = []string{
	RoleProductLead,
	RoleTechLead,
	RoleComplianceLead,
	RoleBankAllianceLead,
}

// RoleDescriptions are the scope descriptions handed to the role router and
// the query rewriter. Static, never mutated.
var RoleDescriptions = map[string]string{
	RoleProductLead:      "Focuses on product features, business strategy, user experience, market requirements, user limits, transaction rules, and delegation of product-related authority. They are concerned with the 'what' and 'why' of the product.",
	RoleTechLead:         "Focuses on technical implementation, system architecture, API performance, database queries, code snippets, software bugs, and infrastructure stability. They are concerned with the 'how' of the product's engineering.",
	RoleComplianceLead:   "Focuses on regulatory adherence, legal standards, risk management, financial compliance (like KYC), audit procedures, and data privacy. They ensure the product operates within legal and ethical boundaries.",
	RoleBankAllianceLead: "Focuses on relationships with partner banks, partnership agreements, Service Level Agreements (SLAs), and the business/technical integration with financial partners.",
}

// KnownRole reports whether role is one of the enumerated stakeholder roles.
func KnownRole(role string) bool {
	_, ok := RoleDescriptions[role]
	return ok
}
