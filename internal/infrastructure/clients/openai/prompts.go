package openai

import (
	"fmt"
	"strings"

	"github.com/medcoda/codepair/internal/domain/providers"
)

// PromptVersion identifies the prompt policy below. Bump it whenever the
// policy, calibration bank, or output schema changes; verdict cache keys
// incorporate it, so a bump invalidates every cached verdict.
const PromptVersion = "v3"

const promptHeader = `You are an expert clinical coding specialist for Australian ICD-10-AM and ACHI codes.

DECISION GUIDANCE (use as reference, not strict rules):

1. CATEGORY MISMATCH: Completely unrelated categories -> INVALID, high confidence (>=0.90)
2. SYMPTOM CODES (R/S/T): Valid if procedure is diagnostic, moderate confidence (0.70-0.80)
3. UNSPECIFIED (.9): Valid but moderate confidence (0.75-0.85) due to lack of specificity
4. CLEAR INDICATION: Direct clinical relationship -> VALID, high confidence (>=0.90)
5. CONTEXT-DEPENDENT: Valid but requires specific context -> moderate confidence (0.70-0.85)

CONFIDENCE GUIDELINES (honest assessment, not constraints):
- 0.90-1.00: Crystal clear indication or contraindication
- 0.75-0.89: Strong evidence, generally appropriate or inappropriate
- 0.60-0.74: Moderate confidence, context-dependent
- Below 0.60: Uncertain or insufficient evidence`

// calibrationBank anchors the confidence scale. Included verbatim in every
// prompt regardless of the query.
const calibrationBank = `CALIBRATION EXAMPLES:

Example 1 (INVALID, high confidence):
ICD: K02.9 (Dental caries) + ACHI: 92209-00 (NIV respiratory support)
Result: {"is_valid": false, "confidence": 0.98, "reasoning": "Dental condition has no respiratory indication", "certainty_explanation": "Clear category mismatch"}

Example 2 (VALID, high confidence):
ICD: J45.0 (Asthma) + ACHI: 92209-00 (NIV respiratory support)
Result: {"is_valid": true, "confidence": 0.95, "reasoning": "Direct indication for respiratory support in severe asthma", "certainty_explanation": "Textbook indication"}

Example 3 (VALID, moderate confidence - symptom code):
ICD: R07.3 (Other chest pain) + ACHI: 92043-00 (Respiratory medication via nebuliser)
Result: {"is_valid": true, "confidence": 0.75, "reasoning": "Symptom code allows plausible respiratory cause, but chest pain is non-specific", "certainty_explanation": "Symptom code reduces certainty"}

Example 4 (VALID, moderate confidence - unspecified):
ICD: J18.9 (Pneumonia, unspecified) + ACHI: 55130-00 (Bronchoscopy with lavage)
Result: {"is_valid": true, "confidence": 0.80, "reasoning": "Bronchoscopy appropriate for pneumonia workup, but .9 code lacks specificity", "certainty_explanation": "Unspecified diagnosis"}

Example 5 (VALID, moderate-low confidence - context-dependent):
ICD: R10.4 (Unspecified abdominal pain) + ACHI: 30473-00 (Diagnostic laparoscopy)
Result: {"is_valid": true, "confidence": 0.72, "reasoning": "Symptom code suggests investigation, but valid only if alarm features present or failed conservative therapy", "certainty_explanation": "Requires clinical context"}

Example 6 (VALID, moderate confidence - context-dependent):
ICD: I10 (Essential hypertension) + ACHI: 13100-00 (Continuous arterial monitoring)
Result: {"is_valid": true, "confidence": 0.82, "reasoning": "Appropriate for hypertensive crisis or perioperative monitoring, not routine outpatient", "certainty_explanation": "Context-specific indication"}

Example 7 (VALID, high confidence - preventive):
ICD: A00.9 (Cholera, unspecified) + ACHI: 92498-00 (Vaccination against cholera)
Result: {"is_valid": true, "confidence": 0.90, "reasoning": "Direct prophylactic measure for cholera", "certainty_explanation": "Standard prevention"}

Example 8 (INVALID, high confidence - clear mismatch):
ICD: A90 (Dengue fever) + ACHI: 16520-00 (Caesarean section)
Result: {"is_valid": false, "confidence": 0.95, "reasoning": "Dengue is viral infection, not obstetric indication for C-section", "certainty_explanation": "Completely unrelated categories"}`

const outputSchema = `Provide HONEST confidence based on your actual medical certainty. Be conservative: if unsure, mark invalid or give low confidence.

Respond with JSON only:
{
    "is_valid": true/false,
    "reasoning": "Detailed clinical explanation",
    "confidence": 0.0-1.0,
    "certainty_explanation": "Why this confidence level"
}`

// BuildPrompt assembles the instruction payload for one verdict request. It is
// a pure function of its input and PromptVersion, which is what makes the
// verdict cache sound.
func BuildPrompt(req providers.VerdictRequest) string {
	var b strings.Builder

	b.WriteString(promptHeader)
	b.WriteString("\n\n")
	b.WriteString(calibrationBank)

	if len(req.Examples) > 0 {
		b.WriteString("\n\nVALIDATED PAIRS FROM THE SAME CATEGORIES (confirmed valid):\n")
		for i, ex := range req.Examples {
			fmt.Fprintf(&b,
				"\nSimilar %d (VALID - Confidence: %.2f):\nICD: %s - %s\nACHI: %s - %s\nReasoning: %s\n",
				i+1, ex.Confidence,
				ex.DiagnosisCode, ex.DiagnosisDescription,
				ex.ProcedureCode, ex.ProcedureDescription,
				ex.Relationship,
			)
		}
	}

	fmt.Fprintf(&b,
		"\n\nNOW VALIDATE THIS PAIR:\n\nICD-10-AM: %s - %s [Category: %s]\nACHI: %s - %s [Category: %s]\n\n",
		req.Diagnosis.Code, req.Diagnosis.Description, req.Diagnosis.Category,
		req.Procedure.Code, req.Procedure.ShortDescription, req.Procedure.Category,
	)
	b.WriteString(outputSchema)

	return b.String()
}
