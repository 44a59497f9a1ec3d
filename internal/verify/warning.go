package verify

// GovWarningText is the statutory health warning required on all alcohol
// beverage labels (27 CFR Part 16). Comparison is exact after whitespace
// normalization; there is zero tolerance for wording changes.
const GovWarningText = "GOVERNMENT WARNING: (1) According to the Surgeon General, women should not drink alcoholic beverages during pregnancy because of the risk of birth defects. (2) Consumption of alcoholic beverages impairs your ability to drive a car or operate machinery, and may cause health problems."

// GovWarningPlaceholder is reported as the application-side value, since
// COLA applications do not carry the warning text themselves.
const GovWarningPlaceholder = "(Required by law)"
