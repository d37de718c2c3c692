package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadops-cli/internal/model"
)

// metricsPromptHeader spells out the batch schema. The generator is prone to
// trailing commas, stray braces, and currency symbols, so the constraints are
// stated explicitly; internal/repair handles what slips through anyway.
const metricsPromptHeader = `Please provide the following data for each business in valid JSON format:
- Use proper commas between items.
- Ensure no trailing commas at the end of the array or objects.
- All keys and string values should be properly quoted (double quotes).
- Every JSON object must be properly structured and have the necessary commas to separate each entry in the array.
- The response should be a JSON array with each object representing a business and having the following fields: "business_name", "estimated_revenue", "market_share", "credit_score", "location_rating".

For the "estimated_revenue" and "market_share", please ensure the following:
- "estimated_revenue" should be a number without any symbols like currency signs. Just provide the number, e.g., "1200000".
- "market_share" should be a plain numeric value without the "%" symbol. For example, "2.5" instead of "2.5%".
- "credit_score" should be a plain number between 0 and 100, e.g., "87".
- "location_rating" should be a number between 0 and 5.
- Ensure the JSON array is properly closed with ` + "`]`" + ` at the end and there are no extra characters like ` + "`}`" + `.

The format should look like this:
[
    {
        "business_name": "Business Name",
        "estimated_revenue": 1200000,
        "market_share": 2.5,
        "credit_score": 86,
        "location_rating": 4.5
    },
    {
        "business_name": "Another Business",
        "estimated_revenue": 1500000,
        "market_share": 3.0,
        "credit_score": 90,
        "location_rating": 4.8
    }
]

Do not include any additional text or formatting other than proper JSON. Ensure the JSON array is correctly closed with ` + "`]`" + `.

`

func metricsPrompt(names []string) string {
	var sb strings.Builder
	sb.WriteString(metricsPromptHeader)
	for _, name := range names {
		fmt.Fprintf(&sb, "Business Name: %s\n", name)
	}
	return sb.String()
}

func rankPrompt(m model.SyntheticMetrics) string {
	return fmt.Sprintf(`Based on the following synthetic data for the business, please provide a rank between 1 and 100, where 1 is the best and 100 is the worst:
- Estimated Revenue: %g
- Market Share: %g
- Credit Score: %d
- Location Rating: %g

Please return only the rank number, without any additional explanation or text.`,
		m.EstimatedRevenue, m.MarketShare, m.CreditScore, m.LocationRating)
}

func matchPrompt(leadName, expertiseNeeded string, roster []model.Salesperson) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `We have a business lead named '%s' that requires expertise in %s. Please recommend the most suitable salesperson from the following list based on their expertise, experience, and location.
The response should be in valid JSON format with keys:
- "Sales Person ID"
- "Name"
- "Experience"
- "Expertise"
- "Location"

LEAD:
Business Name: %s
Expertise Needed: %s

SALESPEOPLE:
`, leadName, expertiseNeeded, leadName, expertiseNeeded)

	for _, sp := range roster {
		fmt.Fprintf(&sb, "\nSales Person ID: %s, Name: %s, Experience: %d years, Expertise: %s, Location: %s",
			sp.ID, sp.Name, sp.ExperienceYears, sp.Expertise, sp.Location)
	}

	sb.WriteString(`

PLEASE RESPOND IN THE EXACT JSON FORMAT BELOW:
{
    "Sales Person ID": "[ID]",
    "Name": "[Name]",
    "Experience": "[Experience (Years)]",
    "Expertise": "[Expertise]",
    "Location": "[Location]"
}
ONLY provide the data in the JSON format above. Do not include any extra explanation, text, or additional information.`)

	return sb.String()
}

func intelligencePrompt(name, address string) string {
	return fmt.Sprintf(`You are a business intelligence assistant. Provide detailed information about the company named "%s" located at "%s".
Include the following if available:
- Overview of the business
- Industry and sector
- Services or products offered
- Company size or popularity
- Estimated financial performance (approximate revenue/profit)
- Recent news, reviews, or reputation
- Competitive landscape and local market context

Format the response as a clean, structured summary using Markdown headings and bullet points.`, name, address)
}

func summaryPrompt(name, address string) string {
	return fmt.Sprintf(`Provide a short summary (2-3 sentences) about the business '%s', located at '%s'.
Focus on:
- What the business is known for
- Any reputation, achievements, or recent positive news
Return only natural descriptive sentences suitable for including in a sales email.`, name, address)
}

func emailPrompt(ctx EmailContext) string {
	return fmt.Sprintf(`Write a professional, friendly outreach email from %s addressed to the owners or managers of '%s'.
- The sender is %s from %s, based in %s.
- Mention their %s years of experience in %s.
- Incorporate this business background naturally: %s
- Invite the business for a meeting to discuss %s's %s and how they could help.
- Format with multiple well-written paragraphs, professional tone, and clear paragraph spacing.
- Close with a polite sign-off and the salesperson's signature.`,
		ctx.CompanyName, ctx.BusinessName,
		ctx.SalespersonName, ctx.CompanyName, ctx.SalespersonLocation,
		ctx.SalespersonExperience, ctx.SalespersonExpertise,
		ctx.BusinessContext,
		ctx.CompanyName, ctx.Offering)
}

func strategyPrompt(name, address string, m *model.SyntheticMetrics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a sales strategist. Write a concise marketing strategy document for approaching the business '%s', located at '%s', as a prospective customer for off-grid energy solutions.
`, name, address)
	if m != nil {
		fmt.Fprintf(&sb, `
Known market indicators for this business:
- Estimated Revenue: %g
- Market Share: %g
- Credit Score: %d
- Location Rating: %g
`, m.EstimatedRevenue, m.MarketShare, m.CreditScore, m.LocationRating)
	}
	sb.WriteString(`
Cover positioning, the key value propositions to lead with, likely objections, and a suggested outreach sequence. Format the response with Markdown headings and bullet points.`)
	return sb.String()
}
