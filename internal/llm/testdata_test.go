package llm

import "github.com/ppiankov/phonespec/internal/model"

var testSchema = model.Schema{
	{Name: model.FieldPhoneName, Description: "Exact phone model name", Required: true},
	{Name: model.FieldChipset, Category: model.CategoryPlatform, Description: "Processor", Required: true},
	{Name: model.FieldWeight, Category: model.CategoryBody, Description: "Weight"},
}

func testRequest() ExtractRequest {
	return ExtractRequest{
		URL:     "https://www.gsmarena.com/google_pixel_8-12546.php",
		Brand:   "Google",
		Content: "Google Pixel 8 ... Chipset Google Tensor G3 ... Weight 187 g",
		Schema:  testSchema,
	}
}

const testFieldsJSON = `{"phone_name":"Google Pixel 8","chipset":"Google Tensor G3 (4 nm)","weight":null}`
