package analyst

import (
	"encoding/json"
	"strings"
)

// Record is the projection of an invoice the analyst sees.
type Record struct {
	Vendor string  `json:"vendor"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

const preamble = `You are a highly precise, automated financial data analysis engine. Your ONLY function is to execute a user's query against a provided JSON dataset of their invoices. You must follow the provided examples perfectly.`

const examples = `**--- EXAMPLE 1: CALCULATION ---**
<DATA>
[
  { "vendor": "Innovate Inc.", "date": "2025-10-26", "amount": 2500.00 },
  { "vendor": "Quantum Solutions", "date": "2025-10-25", "amount": 1200.50 },
  { "vendor": "Innovate Inc.", "date": "2025-09-15", "amount": 1800.00 }
]
</DATA>
<USER_QUESTION>
What is my total spending with Innovate Inc.?
</USER_QUESTION>
**RESPONSE:**
Your total spending with Innovate Inc. is $4,300.00.

**--- EXAMPLE 2: UNSUPPORTED QUESTION ---**
<DATA>
[
  { "vendor": "Innovate Inc.", "date": "2025-10-26", "amount": 2500.00 },
  { "vendor": "Quantum Solutions", "date": "2025-10-25", "amount": 1200.50 }
]
</DATA>
<USER_QUESTION>
What is the status of my invoice from Quantum Solutions?
</USER_QUESTION>
**RESPONSE:**
` + RefusalSentence + `

**--- EXAMPLE 3: RANKING ---**
<DATA>
[
  { "vendor": "Apex Corp.", "date": "2025-10-22", "amount": 850.75 },
  { "vendor": "Stellar Goods", "date": "2025-10-20", "amount": 3150.00 }
]
</DATA>
<USER_QUESTION>
Who is my top vendor?
</USER_QUESTION>
**RESPONSE:**
Your top vendor by spending is Stellar Goods.`

// RefusalSentence is the answer the model is taught to give when the data
// cannot answer the question.
const RefusalSentence = "I cannot answer that question with the available data."

// BuildPrompt renders the few-shot prompt for question over records.
func BuildPrompt(question string, records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n")
	b.WriteString(examples)
	b.WriteString("\n\n**--- YOUR TASK ---**\n")
	b.WriteString("Now, answer the following user question based ONLY on the data provided below. Follow the examples perfectly.\n\n")
	b.WriteString("<DATA>\n")
	b.Write(data)
	b.WriteString("\n</DATA>\n\n<USER_QUESTION>\n")
	b.WriteString(question)
	b.WriteString("\n</USER_QUESTION>\n\n**RESPONSE:**\n")
	return b.String(), nil
}
