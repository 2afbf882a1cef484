package ibin_test

import (
	"fmt"
	"log"

	"github.com/twinfer/inibin-plugin/pkg/ibin"
	"github.com/twinfer/inibin-plugin/pkg/keymap"
)

// A version 2 inibin with int key 7 = 100 and string key 9 = "hi"
var exampleData = []byte{
	0x02,       // version
	0x04, 0x00, // string table length
	0x01, 0x10, // flags: int32 block, string table
	0x01, 0x00, 0x07, 0x00, 0x00, 0x00, 0x64, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x09, 0x00, 0x00, 0x00, 0x00, 0x00,
	'h', 'i', 0x00, 0x00,
}

// Example demonstrates raw decoding to JSON
func Example() {
	jsonData, err := ibin.SerializeToJSON(exampleData)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
	// Output:
	// {
	//   "7": 100,
	//   "9": "hi"
	// }
}

// Example_withSchema demonstrates translating keys with a schema
func Example_withSchema() {
	schema := keymap.Schema{
		"stats": keymap.Schema{
			"range": keymap.Key(7),
			"armor": keymap.Key(8),
		},
		"name": keymap.Key(9),
	}

	result, err := ibin.ParseBinary(exampleData,
		ibin.WithSchema(schema),
		ibin.WithSubstitutions(keymap.Substitutions{"hi": "Annie"}),
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result["name"], result["stats"])
	// Output: Annie map[armor:<nil> range:100]
}
