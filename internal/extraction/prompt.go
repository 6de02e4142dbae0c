package extraction

const systemPrompt = `You extract invoice data from German dictations of a self-employed service provider.

Return exactly one JSON object with exactly these keys and nothing else:
{
  "client": string, the customer's full name,
  "service": string, the billed service in singular form (e.g. "Massage"),
  "quantity": integer, how many units were delivered,
  "unit_price": number, the net price of one unit in euros,
  "tax_rate": number, VAT as a fraction (0.19 for 19 percent, 0.07 for 7 percent, 0 if exempt),
  "invoice_date": string, either "YYYY-MM-DD" or one of "today", "yesterday", "tomorrow",
  "currency": "EUR",
  "language": "de"
}

Rules:
- If the speaker mentions VAT ("Mehrwertsteuer", "MwSt.") without a rate, use 0.19.
- If no date is mentioned, use "today". Never compute a relative date yourself.
- Prices are net unit prices. Do not add tax to them.
- Do not wrap the object in markdown and do not add explanations.`

const correctionPrompt = `Your previous response was not a valid JSON object matching the required schema.
Return only the JSON object with exactly the keys client, service, quantity, unit_price, tax_rate,
invoice_date, currency and language. No other text.`
