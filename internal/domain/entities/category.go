package entities

import "strings"

// Category is the clinical grouping a code resolves to. Resolution is a fixed
// prefix rule over the code text and is never derived from model output.
type Category string

// CategoryUnknown is returned for codes whose prefix is not in the taxonomy.
const CategoryUnknown Category = "Unknown"

// diagnosisChapters maps the leading letter of an ICD-10-AM code to its chapter.
var diagnosisChapters = map[byte]Category{
	'A': "Infectious and parasitic diseases",
	'B': "Infectious and parasitic diseases",
	'C': "Neoplasms",
	'D': "Neoplasms and blood disorders",
	'E': "Endocrine, nutritional and metabolic diseases",
	'F': "Mental and behavioural disorders",
	'G': "Diseases of the nervous system",
	'H': "Diseases of the eye and ear",
	'I': "Diseases of the circulatory system",
	'J': "Diseases of the respiratory system",
	'K': "Diseases of the digestive system",
	'L': "Diseases of the skin",
	'M': "Diseases of the musculoskeletal system",
	'N': "Diseases of the genitourinary system",
	'O': "Pregnancy, childbirth and the puerperium",
	'P': "Conditions originating in the perinatal period",
	'Q': "Congenital malformations",
	'R': "Symptoms, signs and abnormal findings",
	'S': "Injury and poisoning",
	'T': "Injury and poisoning",
	'U': "Codes for special purposes",
	'V': "External causes of morbidity",
	'W': "External causes of morbidity",
	'X': "External causes of morbidity",
	'Y': "External causes of morbidity",
	'Z': "Factors influencing health status",
}

// procedureBlocks maps the leading two digits of an ACHI code stem to its block.
var procedureBlocks = map[string]Category{
	"11": "Examinations and investigations",
	"12": "Examinations and investigations",
	"13": "Physiological monitoring and support",
	"16": "Obstetric procedures",
	"18": "Anaesthesia and nerve blocks",
	"30": "Surgical and endoscopic procedures",
	"31": "Surgical and endoscopic procedures",
	"32": "Surgical and endoscopic procedures",
	"34": "Surgical and endoscopic procedures",
	"35": "Surgical and endoscopic procedures",
	"36": "Surgical and endoscopic procedures",
	"38": "Cardiothoracic procedures",
	"39": "Neurosurgical procedures",
	"40": "Neurosurgical procedures",
	"41": "Procedures on ear, nose and throat",
	"42": "Procedures on the eye",
	"43": "Paediatric surgical procedures",
	"44": "Plastic and reconstructive procedures",
	"45": "Plastic and reconstructive procedures",
	"47": "Orthopaedic procedures",
	"48": "Orthopaedic procedures",
	"49": "Orthopaedic procedures",
	"50": "Orthopaedic procedures",
	"52": "Dental and maxillofacial procedures",
	"55": "Ultrasound and endoscopic investigations",
	"56": "Imaging procedures",
	"57": "Imaging procedures",
	"58": "Imaging procedures",
	"59": "Imaging procedures",
	"60": "Radiation oncology procedures",
	"65": "Pathology and laboratory procedures",
	"71": "Pathology and laboratory procedures",
	"90": "Procedures grouped by body system",
	"91": "Procedures grouped by body system",
	"92": "Non-invasive, cognitive and other interventions",
	"95": "Allied health interventions",
	"96": "Allied health interventions",
}

// NormalizeCode canonicalizes a code for lookups and cache keys.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CategoryOfDiagnosis resolves an ICD-10-AM code to its chapter via the
// fixed first-letter rule.
func CategoryOfDiagnosis(code string) Category {
	code = NormalizeCode(code)
	if code == "" {
		return CategoryUnknown
	}
	if cat, ok := diagnosisChapters[code[0]]; ok {
		return cat
	}
	return CategoryUnknown
}

// CategoryOfProcedure resolves an ACHI code to its block via the fixed
// two-digit prefix rule. The extension after the dash does not participate.
func CategoryOfProcedure(code string) Category {
	code = NormalizeCode(code)
	if len(code) < 2 {
		return CategoryUnknown
	}
	if cat, ok := procedureBlocks[code[:2]]; ok {
		return cat
	}
	return CategoryUnknown
}
