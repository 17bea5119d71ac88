// Package itemtext turns irregular CSV problem rows into clean text records.
//
// Rows are read with ReadRows and grouped into one NormalizedRecord per item
// with Aggregate. Fields that carry HTML markup can then be converted to
// plain text by a Pipeline: the markup is rendered to a PNG in headless
// Chrome and the image is read back with Tesseract OCR. Text without markup
// passes through untouched.
//
// Basic usage:
//
//	rows, err := itemtext.ReadRowsFile("items.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	records, err := itemtext.Aggregate(rows)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	assets, err := itemtext.NewAssetManager("temp", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pipe := itemtext.NewPipeline(assets)
//	defer pipe.Close()
//
//	res := pipe.Convert(ctx, itemtext.NewRequest("Q1", itemtext.KindQuestion, records[0].Question))
//	defer pipe.Dispose(res)
//	if res.Failed() {
//	    log.Fatal(res.Err)
//	}
//	fmt.Println(res.Text)
//
// A Preparer runs the whole batch, optionally across several workers, and
// returns Problem values for downstream consumers.
//
// Rendering requires Chrome or Chromium; go-rod downloads one on first use
// when none is found. OCR requires building with the "ocr" tag and an
// installed Tesseract with the requested language data.
package itemtext
