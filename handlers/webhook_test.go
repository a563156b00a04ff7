package handlers

import "testing"

func TestNormalizePlate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ab-c105", "ABC105"},
		{"ABC 105", "ABC105"},
		{"ab·c1:05", "ABC105"},
		{"HJKL34", "HJKL34"},
		{"", ""},
		{"--- ---", ""},
	}
	for _, tc := range cases {
		if got := NormalizePlate(tc.in); got != tc.want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseLPRPayloadHikCentral(t *testing.T) {
	body := []byte(`{
		"data": {
			"eventInfo": {
				"plateNumber": "HJKL34",
				"deviceName": "Camara_Entrada_1",
				"direction": "entry"
			}
		}
	}`)

	event, err := ParseLPRPayload(body)
	if err != nil {
		t.Fatalf("ParseLPRPayload failed: %v", err)
	}
	if event.Format != "HikCentral" {
		t.Errorf("format = %s, want HikCentral", event.Format)
	}
	if event.Plate != "HJKL34" {
		t.Errorf("plate = %s, want HJKL34", event.Plate)
	}
	if event.Device != "Camara_Entrada_1" {
		t.Errorf("device = %s, want Camara_Entrada_1", event.Device)
	}
	if event.Direction != "ENTRY" {
		t.Errorf("direction = %s, want ENTRY", event.Direction)
	}
}

func TestParseLPRPayloadHikCentralTopLevel(t *testing.T) {
	body := []byte(`{"eventInfo": {"licensePlate": "XY1234"}}`)

	event, err := ParseLPRPayload(body)
	if err != nil {
		t.Fatalf("ParseLPRPayload failed: %v", err)
	}
	if event.Plate != "XY1234" {
		t.Errorf("plate = %s, want XY1234", event.Plate)
	}
}

func TestParseLPRPayloadISAPI(t *testing.T) {
	body := []byte(`{
		"EventNotificationAlert": {
			"deviceName": "Camara_Salida",
			"ANPR": {"licensePlate": "GHJK12"}
		}
	}`)

	event, err := ParseLPRPayload(body)
	if err != nil {
		t.Fatalf("ParseLPRPayload failed: %v", err)
	}
	if event.Format != "ISAPI" {
		t.Errorf("format = %s, want ISAPI", event.Format)
	}
	if event.Plate != "GHJK12" {
		t.Errorf("plate = %s, want GHJK12", event.Plate)
	}
	if event.Device != "Camara_Salida" {
		t.Errorf("device = %s, want Camara_Salida", event.Device)
	}
}

func TestParseLPRPayloadISAPIDefaultsDevice(t *testing.T) {
	body := []byte(`{"EventNotificationAlert": {"anpr": {"plateNo": "ZZ9999"}}}`)

	event, err := ParseLPRPayload(body)
	if err != nil {
		t.Fatalf("ParseLPRPayload failed: %v", err)
	}
	if event.Plate != "ZZ9999" {
		t.Errorf("plate = %s, want ZZ9999", event.Plate)
	}
	if event.Device != "Camara_Directa" {
		t.Errorf("device = %s, want Camara_Directa", event.Device)
	}
}

func TestParseLPRPayloadGeneric(t *testing.T) {
	body := []byte(`{"plate_number": "AB1234", "device_name": "Camara_Entrada"}`)

	event, err := ParseLPRPayload(body)
	if err != nil {
		t.Fatalf("ParseLPRPayload failed: %v", err)
	}
	if event.Format != "Generic" {
		t.Errorf("format = %s, want Generic", event.Format)
	}
	if event.Plate != "AB1234" {
		t.Errorf("plate = %s, want AB1234", event.Plate)
	}
	if event.Device != "Camara_Entrada" {
		t.Errorf("device = %s, want Camara_Entrada", event.Device)
	}
}

func TestParseLPRPayloadGenericDefaultsDevice(t *testing.T) {
	body := []byte(`{"PlateNumber": "CD5678"}`)

	event, err := ParseLPRPayload(body)
	if err != nil {
		t.Fatalf("ParseLPRPayload failed: %v", err)
	}
	if event.Plate != "CD5678" {
		t.Errorf("plate = %s, want CD5678", event.Plate)
	}
	if event.Device != "Unknown_Device" {
		t.Errorf("device = %s, want Unknown_Device", event.Device)
	}
}

func TestParseLPRPayloadUnrecognized(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"xml", `<EventNotificationAlert><ANPR/></EventNotificationAlert>`},
		{"empty", ``},
		{"json without plate", `{"foo": "bar"}`},
		{"truncated json", `{"plateNumber": "AB`},
	}
	for _, tc := range cases {
		if _, err := ParseLPRPayload([]byte(tc.body)); err != ErrUnrecognizedPayload {
			t.Errorf("%s: ParseLPRPayload returned %v, want ErrUnrecognizedPayload", tc.name, err)
		}
	}
}
