// Package domain models NASA GISTEMP global temperature anomaly data and the
// cleaning and aggregation steps behind the dashboard.
//
// # Data Source
//
// The Global Land-Ocean Temperature Index is published by the NASA Goddard
// Institute for Space Studies as a CSV table at
// https://data.giss.nasa.gov/gistemp/tabledata_v4/GLB.Ts+dSST.csv. The first line
// is a title ("Land-Ocean: Global Means") and is skipped; the second line is the
// column header.
//
// # GISTEMP Conventions
//
// Columns:
//
//	Year, Jan..Dec, J-D, D-N, DJF, MAM, JJA, SON
//	J-D is the January-December annual mean, D-N the December-November mean,
//	DJF/MAM/JJA/SON the meteorological seasons.
//
// Values:
//
//	Anomalies in degrees Celsius relative to the 1951-1980 base period,
//	e.g. "1.17". Months not yet observed, and aggregates that depend on them,
//	are reported as "***" (or "****").
//
// Stray rows:
//
//	Older revisions of the table repeat the header inside the data and append
//	footnotes. Any row whose Year is not numeric is discarded, as is any row
//	whose J-D is not numeric (the current, incomplete year).
//
// # Derived Columns
//
// Decade is the year floored to a multiple of ten (1983 -> 1980). TempDifference
// is the first difference of J-D in table order and is nil for the first row.
// Every derivation returns a new Table; the input is never modified.
package domain
