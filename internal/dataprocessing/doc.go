// Package dataprocessing turns the raw sales dataset into the canonical
// in-memory table and filters it into views.
//
// # Data Flow
//
//	.xlsx / .csv → ReadSource → RawTable → Normalize → CanonicalTable → Filter → View
//
// Normalize standardizes headers (CUSTOMER_CODE becomes "Customer ID" and so
// on), parses order dates and numbers, and drops rows without an order date
// or country. Unparseable numbers become NaN rather than errors. The
// CanonicalTable never changes after construction; Filter copies matching
// records into a View whose fingerprint is derived from the table and the
// filter parameters, which makes views usable as cache keys.
//
// Loader adds the on-disk lifecycle: the first load writes a canonical CSV
// cache so later process starts skip the workbook.
package dataprocessing
